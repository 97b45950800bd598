package orchestrator

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog/log"
)

// startLoopLocked starts a tick loop unless one is already running.
// Must be called with loopMu held.
func (o *Orchestrator) startLoopLocked() {
	if o.closed || o.stopLoop != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := o.clock.NewTicker(o.period)

	o.stopLoop = cancel
	o.loopDone = done

	go o.runTicks(ctx, ticker, done)

	log.Debug().
		Str("instance", o.instanceID).
		Dur("period", o.period).
		Msg("tick loop started")
}

// stopLoopLocked cancels the running tick loop and waits for it to exit.
// Must be called with loopMu held.
func (o *Orchestrator) stopLoopLocked() {
	if o.stopLoop == nil {
		return
	}

	o.stopLoop()
	<-o.loopDone
	o.stopLoop = nil
	o.loopDone = nil

	log.Debug().Str("instance", o.instanceID).Msg("tick loop stopped")
}

func (o *Orchestrator) runTicks(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ended := o.tick(ctx); ended {
				return
			}
		}
	}
}

// tick advances the session once and reports whether the session is over
func (o *Orchestrator) tick(ctx context.Context) bool {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	out, snap := o.session.Tick()
	if !out.Applied {
		return !snap.IsRunning
	}

	o.publish(ctx, events.EventTypeTicked, snap, nil)
	if !out.Ended {
		return false
	}

	payload := events.SessionEndedPayload{
		SessionID:       snap.SessionID,
		EndedAt:         o.clock.Now().UTC(),
		FinalScore:      snap.Score,
		Level:           snap.Level,
		CustomersServed: o.session.CustomersServed(),
		Language:        snap.Language,
	}
	if snap.StartedAt != nil {
		payload.StartedAt = snap.StartedAt.UTC()
	}

	log.Info().
		Str("session_id", snap.SessionID.String()).
		Int("final_score", snap.Score).
		Int("customers_served", payload.CustomersServed).
		Msg("session ended")

	o.publish(ctx, events.EventTypeSessionEnded, snap, payload)
	return true
}
