package publisher

import (
	"context"

	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogPublisher writes one log line per event. Ticks are logged at debug level.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: log.Logger}
}

// NewLogPublisherWithLogger is used by tests to capture output
func NewLogPublisherWithLogger(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, env events.Envelope) error {
	ev := p.logger.Info()
	if env.Type == events.EventTypeTicked {
		ev = p.logger.Debug()
	}
	ev.
		Str("event_id", env.ID.String()).
		Str("event_type", string(env.Type)).
		Str("session_id", env.SessionID.String()).
		Int("score", env.Snapshot.Score).
		Int("time_left", env.Snapshot.TimeRemaining).
		Bool("paused", env.Snapshot.IsPaused).
		Msg("session event")
	return nil
}
