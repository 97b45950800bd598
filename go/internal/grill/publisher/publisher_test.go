package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope(t *testing.T, eventType events.EventType) events.Envelope {
	t.Helper()
	snap := grill.Snapshot{SessionID: uuid.New(), Score: 40, TimeRemaining: 12, IsRunning: true}
	env, err := events.NewEnvelope(eventType, snap, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	return env
}

func TestFanout_PublishesToAllAndJoinsErrors(t *testing.T) {
	var got []string
	ok := Func(func(ctx context.Context, env events.Envelope) error {
		got = append(got, "ok")
		return nil
	})
	boom := errors.New("boom")
	failing := Func(func(ctx context.Context, env events.Envelope) error {
		got = append(got, "failing")
		return boom
	})

	f := NewFanout(failing, nil, ok)
	assert.Equal(t, 2, f.Len())

	err := f.Publish(context.Background(), testEnvelope(t, events.EventTypeSessionStarted))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"failing", "ok"}, got)
}

func TestFanout_NoPublishers(t *testing.T) {
	f := NewFanout()
	assert.NoError(t, f.Publish(context.Background(), testEnvelope(t, events.EventTypeTicked)))
}

func TestLogPublisher_LevelsByEventType(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	p := NewLogPublisherWithLogger(logger)

	require.NoError(t, p.Publish(context.Background(), testEnvelope(t, events.EventTypeTicked)))
	assert.Empty(t, buf.String())

	require.NoError(t, p.Publish(context.Background(), testEnvelope(t, events.EventTypeCustomerServed)))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "CustomerServed", line["event_type"])
	assert.Equal(t, float64(40), line["score"])
}

func TestBuildMessage_SubjectAndHeaders(t *testing.T) {
	env := testEnvelope(t, events.EventTypeSessionEnded)

	msg, err := buildMessage("grill.events", env)
	require.NoError(t, err)

	assert.Equal(t, "grill.events.SessionEnded", msg.Subject)
	assert.Equal(t, "SessionEnded", msg.Header.Get("Event-Type"))
	assert.Equal(t, env.SessionID.String(), msg.Header.Get("Session-ID"))
	assert.Equal(t, env.ID.String(), msg.Header.Get("Event-ID"))

	var body wireEnvelope
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, env.ID.String(), body.EventID)
	assert.Equal(t, "SessionEnded", body.EventType)
}

func TestJetStreamPublisher_SkipsTicksByDefault(t *testing.T) {
	// No connection is needed: ticks return before touching JetStream.
	p := &JetStreamPublisher{config: DefaultJetStreamConfig()}
	assert.NoError(t, p.Publish(context.Background(), testEnvelope(t, events.EventTypeTicked)))
	assert.Equal(t, "grill.events.Ticked", p.Subject(events.EventTypeTicked))
}

func TestStreamConfig_SubjectPrefixChangeTriggersUpdate(t *testing.T) {
	current := (&JetStreamPublisher{config: DefaultJetStreamConfig()}).streamConfig()
	assert.Equal(t, []string{"grill.events.>"}, current.Subjects)
	assert.True(t, isStreamConfigEqual(current, current))

	cfg := DefaultJetStreamConfig()
	cfg.SubjectPrefix = "arcade.grill"
	wanted := (&JetStreamPublisher{config: cfg}).streamConfig()
	assert.Equal(t, []string{"arcade.grill.>"}, wanted.Subjects)
	assert.False(t, isStreamConfigEqual(current, wanted))
}
