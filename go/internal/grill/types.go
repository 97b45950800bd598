package grill

import (
	"time"

	"github.com/google/uuid"
)

// CookingState is the doneness of a piece of seaweed on the grill
type CookingState string

const (
	CookingStateRaw     CookingState = "raw"
	CookingStatePerfect CookingState = "perfect"
	CookingStateBurnt   CookingState = "burnt"
)

// CustomerKind distinguishes regular customers from VIPs
type CustomerKind string

const (
	CustomerKindRegular CustomerKind = "normal"
	CustomerKindVIP     CustomerKind = "vip"
)

// Order is what a customer asks for. "good" never matches a cooking state
// exactly, so only OrderPerfect and OrderAny can be fulfilled with a match.
type Order string

const (
	OrderPerfect Order = "perfect"
	OrderGood    Order = "good"
	OrderAny     Order = "any"
)

// Orders lists the orders a new customer is drawn from
var Orders = []Order{OrderPerfect, OrderGood, OrderAny}

// Language is a display preference carried with the session
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKorean  Language = "ko"
)

// IsValid reports whether l is a supported language
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageKorean:
		return true
	}
	return false
}

// Seaweed is one unit cooking on the grill
type Seaweed struct {
	ID             string       `json:"id"`
	State          CookingState `json:"state"`
	CookingElapsed int          `json:"cooking_time"`
}

// Customer is a ticket waiting to be served
type Customer struct {
	ID           string       `json:"id"`
	Kind         CustomerKind `json:"type"`
	Order        Order        `json:"order"`
	Patience     int          `json:"patience"`
	Satisfaction int          `json:"satisfaction"`
}

// Snapshot is a read-only copy of the session handed to the presentation layer
type Snapshot struct {
	// Version grows with every applied transition and never resets, so a
	// higher version is always the newer state.
	Version       uint64     `json:"version"`
	SessionID     uuid.UUID  `json:"session_id"`
	Score         int        `json:"score"`
	Level         int        `json:"level"`
	TimeRemaining int        `json:"time_left"`
	IsRunning     bool       `json:"is_playing"`
	IsPaused      bool       `json:"is_paused"`
	Language      Language   `json:"language"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	Seaweed       []Seaweed  `json:"seaweed"`
	Customers     []Customer `json:"customers"`
}

// ShowSummary reports whether a finished session should show its final score.
// Idle and ended sessions look the same; only a positive score tells them apart.
func (s Snapshot) ShowSummary() bool {
	return !s.IsRunning && s.Score > 0
}

// FindSeaweed returns the seaweed with the given id
func (s Snapshot) FindSeaweed(id string) (Seaweed, bool) {
	for _, sw := range s.Seaweed {
		if sw.ID == id {
			return sw, true
		}
	}
	return Seaweed{}, false
}

// FindCustomer returns the customer with the given id
func (s Snapshot) FindCustomer(id string) (Customer, bool) {
	for _, c := range s.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// ServeOutcome describes the result of a serve intent
type ServeOutcome struct {
	Applied      bool         `json:"applied"`
	CustomerID   string       `json:"customer_id"`
	SeaweedID    string       `json:"seaweed_id"`
	Order        Order        `json:"order,omitempty"`
	CookingState CookingState `json:"cooking_state,omitempty"`
	Points       int          `json:"points"`
}

// TickOutcome describes the result of a tick
type TickOutcome struct {
	Applied bool
	Ended   bool
}
