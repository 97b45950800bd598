package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/gimgrill/go/internal/grill"
)

var (
	// ErrMissingField is returned when an intent lacks a required field
	ErrMissingField = errors.New("missing field")
	// ErrUnknownIntent is returned for intent types the gateway does not handle
	ErrUnknownIntent = errors.New("unknown intent")
)

// Intents is what the gateway needs from the session owner
type Intents interface {
	Start(ctx context.Context) grill.Snapshot
	TogglePause(ctx context.Context) grill.Snapshot
	Flip(ctx context.Context, seaweedID string) grill.Snapshot
	Serve(ctx context.Context, customerID, seaweedID string) (grill.ServeOutcome, grill.Snapshot)
	SetLanguage(ctx context.Context, lang grill.Language) grill.Snapshot
	Snapshot() grill.Snapshot
}

// IntentType names a player action
type IntentType string

const (
	IntentStart       IntentType = "start"
	IntentTogglePause IntentType = "toggle_pause"
	IntentFlip        IntentType = "flip"
	IntentServe       IntentType = "serve"
	IntentSetLanguage IntentType = "set_language"
)

// Intent is a player action sent by a client
type Intent struct {
	Type       IntentType     `json:"type"`
	SeaweedID  string         `json:"seaweed_id,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Language   grill.Language `json:"language,omitempty"`
}

// DecodeIntent parses and validates a client message
func DecodeIntent(data []byte) (Intent, error) {
	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	if err := intent.Validate(); err != nil {
		return Intent{}, err
	}
	return intent, nil
}

// Validate checks that the intent carries the fields its type needs
func (i Intent) Validate() error {
	switch i.Type {
	case IntentStart, IntentTogglePause:
		return nil
	case IntentFlip:
		if i.SeaweedID == "" {
			return fmt.Errorf("%w: seaweed_id", ErrMissingField)
		}
	case IntentServe:
		if i.CustomerID == "" {
			return fmt.Errorf("%w: customer_id", ErrMissingField)
		}
		if i.SeaweedID == "" {
			return fmt.Errorf("%w: seaweed_id", ErrMissingField)
		}
	case IntentSetLanguage:
		if i.Language == "" {
			return fmt.Errorf("%w: language", ErrMissingField)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownIntent, i.Type)
	}
	return nil
}

// ApplyIntent routes a validated intent to the session owner
func ApplyIntent(ctx context.Context, intents Intents, intent Intent) grill.Snapshot {
	switch intent.Type {
	case IntentStart:
		return intents.Start(ctx)
	case IntentTogglePause:
		return intents.TogglePause(ctx)
	case IntentFlip:
		return intents.Flip(ctx, intent.SeaweedID)
	case IntentServe:
		_, snap := intents.Serve(ctx, intent.CustomerID, intent.SeaweedID)
		return snap
	case IntentSetLanguage:
		return intents.SetLanguage(ctx, intent.Language)
	default:
		return intents.Snapshot()
	}
}
