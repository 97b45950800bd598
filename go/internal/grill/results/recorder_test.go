package results

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endedEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	started := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	snap := grill.Snapshot{
		SessionID: uuid.New(),
		Score:     230,
		Level:     1,
		Language:  grill.LanguageKorean,
		StartedAt: &started,
		Seaweed: []grill.Seaweed{
			{ID: "a", State: grill.CookingStateBurnt},
			{ID: "b", State: grill.CookingStateBurnt},
			{ID: "c", State: grill.CookingStateRaw},
		},
		Customers: []grill.Customer{{ID: "x"}, {ID: "y"}},
	}
	env, err := events.NewEnvelope(events.EventTypeSessionEnded, snap, started.Add(time.Minute), events.SessionEndedPayload{
		SessionID:       snap.SessionID,
		StartedAt:       started,
		EndedAt:         started.Add(time.Minute),
		FinalScore:      230,
		Level:           1,
		CustomersServed: 4,
		Language:        grill.LanguageKorean,
	})
	require.NoError(t, err)
	return env
}

func TestRecorder_IgnoresOtherEvents(t *testing.T) {
	// A nil DB proves nothing is written for these.
	r := NewRecorder(nil)
	for _, eventType := range []events.EventType{
		events.EventTypeSessionStarted,
		events.EventTypeTicked,
		events.EventTypeCustomerServed,
	} {
		assert.NoError(t, r.Publish(context.Background(), events.Envelope{Type: eventType}))
	}
}

func TestParamsFromEnvelope(t *testing.T) {
	env := endedEnvelope(t)

	params, err := paramsFromEnvelope(env)
	require.NoError(t, err)

	assert.Equal(t, env.SessionID, params.SessionID)
	assert.NotEqual(t, uuid.Nil, params.ID)
	assert.Equal(t, 230, params.FinalScore)
	assert.Equal(t, 1, params.Level)
	assert.Equal(t, 4, params.CustomersServed)
	assert.Equal(t, "ko", params.Language)
	assert.True(t, params.StartedAt.Valid)
	assert.Equal(t, time.Minute, params.EndedAt.Sub(params.StartedAt.Time))

	require.True(t, params.Metadata.Valid)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(params.Metadata.RawMessage, &meta))
	assert.Equal(t, env.ID.String(), meta["event_id"])
	assert.Equal(t, float64(2), meta["customers_waiting"])
	assert.Equal(t, map[string]any{"burnt": float64(2), "raw": float64(1)}, meta["grill"])
}

func TestParamsFromEnvelope_BadPayload(t *testing.T) {
	env := events.Envelope{Type: events.EventTypeSessionEnded, Payload: json.RawMessage(`[1,2]`)}
	_, err := paramsFromEnvelope(env)
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: defaultLimit},
		{raw: "5", want: 5},
		{raw: "5000", want: maxLimit},
		{raw: "0", wantErr: true},
		{raw: "ten", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestHandleTopResults_RejectsBadInput(t *testing.T) {
	h := NewHandler(nil)

	rec := httptest.NewRecorder()
	h.HandleTopResults(rec, httptest.NewRequest(http.MethodPost, "/api/results/top", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleTopResults(rec, httptest.NewRequest(http.MethodGet, "/api/results/top?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
