package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_CopiesSessionAndPayload(t *testing.T) {
	snap := grill.Snapshot{SessionID: uuid.New(), Score: 150}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("KST", 9*3600))

	env, err := NewEnvelope(EventTypeCustomerServed, snap, at, CustomerServedPayload{
		CustomerID:   "customer-1",
		SeaweedID:    "seaweed-0",
		Order:        grill.OrderPerfect,
		CookingState: grill.CookingStatePerfect,
		Points:       100,
		Score:        150,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, env.ID)
	assert.Equal(t, snap.SessionID, env.SessionID)
	assert.Equal(t, time.UTC, env.Timestamp.Location())
	assert.True(t, env.Timestamp.Equal(at))

	payload, err := ParsePayload(env)
	require.NoError(t, err)
	served, ok := payload.(CustomerServedPayload)
	require.True(t, ok)
	assert.Equal(t, 100, served.Points)
	assert.Equal(t, grill.CookingStatePerfect, served.CookingState)
}

func TestNewEnvelope_NilPayload(t *testing.T) {
	env, err := NewEnvelope(EventTypeTicked, grill.Snapshot{}, time.Now(), nil)
	require.NoError(t, err)
	assert.Nil(t, env.Payload)

	payload, err := ParsePayload(env)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestParsePayload_RejectsMalformedData(t *testing.T) {
	env := Envelope{Type: EventTypeSessionEnded, Payload: []byte(`{"final_score":"lots"}`)}
	_, err := ParsePayload(env)
	assert.Error(t, err)
}
