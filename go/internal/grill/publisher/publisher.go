package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog/log"
)

// Publisher delivers session events somewhere outside the session
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Func adapts a plain function to the Publisher interface
type Func func(ctx context.Context, env events.Envelope) error

func (f Func) Publish(ctx context.Context, env events.Envelope) error {
	return f(ctx, env)
}

// Fanout publishes every event to all of its publishers. One failing
// publisher does not stop the others.
type Fanout struct {
	publishers []Publisher
}

// NewFanout creates a fan-out over the given publishers, skipping nils
func NewFanout(publishers ...Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Add registers another publisher
func (f *Fanout) Add(p Publisher) {
	if p != nil {
		f.publishers = append(f.publishers, p)
	}
}

// Len returns the number of registered publishers
func (f *Fanout) Len() int {
	return len(f.publishers)
}

func (f *Fanout) Publish(ctx context.Context, env events.Envelope) error {
	var errs []error
	for i, p := range f.publishers {
		if err := p.Publish(ctx, env); err != nil {
			log.Error().
				Err(err).
				Int("publisher", i).
				Str("event_type", string(env.Type)).
				Str("event_id", env.ID.String()).
				Msg("failed to publish event")
			errs = append(errs, fmt.Errorf("publisher %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
