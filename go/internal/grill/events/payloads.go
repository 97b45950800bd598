package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/grill"
)

// EventType represents the type of session event
type EventType string

const (
	EventTypeSessionStarted  EventType = "SessionStarted"
	EventTypeSessionPaused   EventType = "SessionPaused"
	EventTypeSessionResumed  EventType = "SessionResumed"
	EventTypeTicked          EventType = "Ticked"
	EventTypeSeaweedFlipped  EventType = "SeaweedFlipped"
	EventTypeCustomerServed  EventType = "CustomerServed"
	EventTypeLanguageChanged EventType = "LanguageChanged"
	EventTypeSessionEnded    EventType = "SessionEnded"

	// EventTypeSnapshot is sent to a client when it first connects
	EventTypeSnapshot EventType = "Snapshot"
)

// Envelope is the base structure for all session events. Every envelope
// carries the snapshot taken right after the transition it describes.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	SessionID uuid.UUID       `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Snapshot  grill.Snapshot  `json:"snapshot"`
}

// SeaweedFlippedPayload is the payload for a SeaweedFlipped event
type SeaweedFlippedPayload struct {
	SeaweedID string `json:"seaweed_id"`
}

// CustomerServedPayload is the payload for a CustomerServed event
type CustomerServedPayload struct {
	CustomerID   string             `json:"customer_id"`
	SeaweedID    string             `json:"seaweed_id"`
	Order        grill.Order        `json:"order"`
	CookingState grill.CookingState `json:"cooking_state"`
	Points       int                `json:"points"`
	Score        int                `json:"score"`
}

// LanguageChangedPayload is the payload for a LanguageChanged event
type LanguageChangedPayload struct {
	Language grill.Language `json:"language"`
}

// SessionEndedPayload is the payload for a SessionEnded event
type SessionEndedPayload struct {
	SessionID       uuid.UUID      `json:"session_id"`
	StartedAt       time.Time      `json:"started_at"`
	EndedAt         time.Time      `json:"ended_at"`
	FinalScore      int            `json:"final_score"`
	Level           int            `json:"level"`
	CustomersServed int            `json:"customers_served"`
	Language        grill.Language `json:"language"`
}

// NewEnvelope builds an envelope for the given snapshot. A nil payload is omitted.
func NewEnvelope(eventType EventType, snap grill.Snapshot, at time.Time, payload any) (Envelope, error) {
	env := Envelope{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: snap.SessionID,
		Timestamp: at.UTC(),
		Snapshot:  snap,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		env.Payload = data
	}
	return env, nil
}

// ParsePayload decodes the payload of an envelope into its typed struct.
// Events without a payload return nil.
func ParsePayload(env Envelope) (any, error) {
	switch env.Type {
	case EventTypeSeaweedFlipped:
		var payload SeaweedFlippedPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeCustomerServed:
		var payload CustomerServedPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeLanguageChanged:
		var payload LanguageChangedPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionEnded:
		var payload SessionEndedPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil
	}
}
