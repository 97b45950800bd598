package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog/log"
)

// publishTimeout bounds how long one event may spend in the publishers
const publishTimeout = 10 * time.Second

// Publisher defines what the orchestrator needs to announce transitions
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Orchestrator owns the session, schedules its ticks and publishes an event
// after every applied transition. It is the only writer of session state.
type Orchestrator struct {
	session    *grill.Session
	publisher  Publisher
	clock      clockwork.Clock
	period     time.Duration
	instanceID string

	// emitMu is held across a transition and its publish so envelopes leave
	// in the order the session applied them. Lock order: loopMu, then emitMu.
	emitMu sync.Mutex

	// loopMu serializes tick loop changes with the transitions that cause them
	loopMu   sync.Mutex
	stopLoop context.CancelFunc
	loopDone chan struct{}
	closed   bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock replaces the real clock, typically with a clockwork.FakeClock in tests
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// NewOrchestrator creates an orchestrator for the given session
func NewOrchestrator(session *grill.Session, publisher Publisher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session:    session,
		publisher:  publisher,
		clock:      clockwork.NewRealClock(),
		period:     session.Rules().TickPeriod,
		instanceID: uuid.New().String()[:8], // short ID for logging
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins a new round and (re)starts the tick loop
func (o *Orchestrator) Start(ctx context.Context) grill.Snapshot {
	o.loopMu.Lock()
	defer o.loopMu.Unlock()

	// The loop may be mid-publish and needs emitMu to finish
	o.stopLoopLocked()

	o.emitMu.Lock()
	snap := o.session.Start()

	log.Info().
		Str("instance", o.instanceID).
		Str("session_id", snap.SessionID.String()).
		Int("time_left", snap.TimeRemaining).
		Msg("session started")

	o.publish(ctx, events.EventTypeSessionStarted, snap, nil)
	o.emitMu.Unlock()

	o.startLoopLocked()
	return snap
}

// TogglePause pauses or resumes the session. While paused no ticks are scheduled.
func (o *Orchestrator) TogglePause(ctx context.Context) grill.Snapshot {
	o.loopMu.Lock()
	defer o.loopMu.Unlock()

	o.emitMu.Lock()
	snap := o.session.TogglePause()

	eventType := events.EventTypeSessionResumed
	if snap.IsPaused {
		eventType = events.EventTypeSessionPaused
	}

	log.Info().
		Str("session_id", snap.SessionID.String()).
		Bool("paused", snap.IsPaused).
		Msg("session pause toggled")

	o.publish(ctx, eventType, snap, nil)
	o.emitMu.Unlock()

	// Ticks that fire before the loop stops see a paused session and do nothing
	if snap.IsPaused {
		o.stopLoopLocked()
	} else if snap.IsRunning {
		o.startLoopLocked()
	}
	return snap
}

// Flip resets the cooking time of one piece of seaweed
func (o *Orchestrator) Flip(ctx context.Context, seaweedID string) grill.Snapshot {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	applied, snap := o.session.Flip(seaweedID)
	if !applied {
		log.Debug().
			Str("seaweed_id", seaweedID).
			Bool("running", snap.IsRunning).
			Msg("flip ignored")
		return snap
	}

	o.publish(ctx, events.EventTypeSeaweedFlipped, snap, events.SeaweedFlippedPayload{SeaweedID: seaweedID})
	return snap
}

// Serve gives a piece of seaweed to a customer
func (o *Orchestrator) Serve(ctx context.Context, customerID, seaweedID string) (grill.ServeOutcome, grill.Snapshot) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	outcome, snap := o.session.Serve(customerID, seaweedID)
	if !outcome.Applied {
		log.Debug().
			Str("customer_id", customerID).
			Str("seaweed_id", seaweedID).
			Bool("running", snap.IsRunning).
			Msg("serve ignored")
		return outcome, snap
	}

	log.Info().
		Str("session_id", snap.SessionID.String()).
		Str("customer_id", customerID).
		Str("order", string(outcome.Order)).
		Str("cooking_state", string(outcome.CookingState)).
		Int("points", outcome.Points).
		Int("score", snap.Score).
		Msg("customer served")

	o.publish(ctx, events.EventTypeCustomerServed, snap, events.CustomerServedPayload{
		CustomerID:   customerID,
		SeaweedID:    seaweedID,
		Order:        outcome.Order,
		CookingState: outcome.CookingState,
		Points:       outcome.Points,
		Score:        snap.Score,
	})
	return outcome, snap
}

// SetLanguage changes the display language of the session
func (o *Orchestrator) SetLanguage(ctx context.Context, lang grill.Language) grill.Snapshot {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	applied, snap := o.session.SetLanguage(lang)
	if !applied {
		log.Debug().Str("language", string(lang)).Msg("unsupported language ignored")
		return snap
	}

	o.publish(ctx, events.EventTypeLanguageChanged, snap, events.LanguageChangedPayload{Language: lang})
	return snap
}

// Snapshot returns the current session state
func (o *Orchestrator) Snapshot() grill.Snapshot {
	return o.session.Snapshot()
}

// Close stops the tick loop and waits for it to exit
func (o *Orchestrator) Close() {
	o.loopMu.Lock()
	defer o.loopMu.Unlock()

	o.stopLoopLocked()
	o.closed = true
	log.Info().Str("instance", o.instanceID).Msg("orchestrator closed")
}

// publish wraps a snapshot in an envelope and hands it to the publisher.
// Failures are logged and never undo the transition. The caller's context only
// contributes values: a stopped loop or a finished request must not abort a
// write that records a transition which already happened.
func (o *Orchestrator) publish(ctx context.Context, eventType events.EventType, snap grill.Snapshot, payload any) {
	if o.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	env, err := events.NewEnvelope(eventType, snap, o.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event envelope")
		return
	}

	if err := o.publisher.Publish(ctx, env); err != nil {
		log.Error().
			Err(err).
			Str("event_type", string(eventType)).
			Str("session_id", snap.SessionID.String()).
			Msg("failed to publish session event")
	}
}
