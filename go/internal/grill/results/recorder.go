package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/mcdev12/gimgrill/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"
)

// Recorder is a publisher that writes one row per finished round.
// Every other event type is ignored.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// resultMetadata is stored in the metadata column
type resultMetadata struct {
	EventID          uuid.UUID                  `json:"event_id"`
	CustomersWaiting int                        `json:"customers_waiting"`
	Grill            map[grill.CookingState]int `json:"grill"`
}

func (r *Recorder) Publish(ctx context.Context, env events.Envelope) error {
	if env.Type != events.EventTypeSessionEnded {
		return nil
	}

	params, err := paramsFromEnvelope(env)
	if err != nil {
		return err
	}

	var inserted bool
	err = sqlutil.Run(ctx, r.db, NewTx, func(q *Queries) error {
		var err error
		inserted, err = q.InsertSessionResult(ctx, params)
		return err
	})
	if err != nil {
		return fmt.Errorf("record session %s: %w", params.SessionID, err)
	}

	log.Info().
		Str("session_id", params.SessionID.String()).
		Int("final_score", params.FinalScore).
		Int("customers_served", params.CustomersServed).
		Bool("duplicate", !inserted).
		Msg("recorded session result")
	return nil
}

func paramsFromEnvelope(env events.Envelope) (InsertSessionResultParams, error) {
	var payload events.SessionEndedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return InsertSessionResultParams{}, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	meta := resultMetadata{
		EventID:          env.ID,
		CustomersWaiting: len(env.Snapshot.Customers),
		Grill:            make(map[grill.CookingState]int),
	}
	for _, s := range env.Snapshot.Seaweed {
		meta.Grill[s.State]++
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return InsertSessionResultParams{}, fmt.Errorf("marshal result metadata: %w", err)
	}

	return InsertSessionResultParams{
		ID:              uuid.New(),
		SessionID:       payload.SessionID,
		FinalScore:      payload.FinalScore,
		Level:           payload.Level,
		CustomersServed: payload.CustomersServed,
		Language:        string(payload.Language),
		StartedAt:       sqlutil.ToSqlTime(payload.StartedAt),
		EndedAt:         payload.EndedAt,
		Metadata:        pqtype.NullRawMessage{RawMessage: raw, Valid: true},
	}, nil
}
