package grill

import (
	"fmt"
	"time"
)

// Rules holds the tuning constants of a session
type Rules struct {
	SessionLength       int           `yaml:"session_length_sec"`
	TickPeriod          time.Duration `yaml:"tick_period"`
	SeaweedCap          int           `yaml:"seaweed_cap"`
	CustomerCap         int           `yaml:"customer_cap"`
	RawUntil            int           `yaml:"raw_until_sec"`
	PerfectUntil        int           `yaml:"perfect_until_sec"`
	PatienceDecay       int           `yaml:"patience_decay"`
	SatisfactionDecay   int           `yaml:"satisfaction_decay"`
	InitialPatience     int           `yaml:"initial_patience"`
	InitialSatisfaction int           `yaml:"initial_satisfaction"`
	VIPChance           float64       `yaml:"vip_chance"`
	PerfectPoints       int           `yaml:"perfect_points"`
	MatchPoints         int           `yaml:"match_points"`
	MismatchPoints      int           `yaml:"mismatch_points"`
}

// DefaultRules returns the standard game tuning
func DefaultRules() Rules {
	return Rules{
		SessionLength:       60,
		TickPeriod:          time.Second,
		SeaweedCap:          3,
		CustomerCap:         2,
		RawUntil:            3,
		PerfectUntil:        6,
		PatienceDecay:       2,
		SatisfactionDecay:   1,
		InitialPatience:     100,
		InitialSatisfaction: 100,
		VIPChance:           0.3,
		PerfectPoints:       100,
		MatchPoints:         50,
		MismatchPoints:      -20,
	}
}

// Validate checks that the rules describe a playable session
func (r Rules) Validate() error {
	switch {
	case r.SessionLength <= 0:
		return fmt.Errorf("%w: session length must be positive", ErrInvalidRules)
	case r.TickPeriod <= 0:
		return fmt.Errorf("%w: tick period must be positive", ErrInvalidRules)
	case r.SeaweedCap <= 0:
		return fmt.Errorf("%w: seaweed cap must be positive", ErrInvalidRules)
	case r.CustomerCap <= 0:
		return fmt.Errorf("%w: customer cap must be positive", ErrInvalidRules)
	case r.RawUntil < 0:
		return fmt.Errorf("%w: raw threshold must not be negative", ErrInvalidRules)
	case r.PerfectUntil < r.RawUntil:
		return fmt.Errorf("%w: perfect threshold %d is below raw threshold %d", ErrInvalidRules, r.PerfectUntil, r.RawUntil)
	case r.PatienceDecay < 0 || r.SatisfactionDecay < 0:
		return fmt.Errorf("%w: decay rates must not be negative", ErrInvalidRules)
	case r.InitialPatience < 0 || r.InitialSatisfaction < 0:
		return fmt.Errorf("%w: initial patience and satisfaction must not be negative", ErrInvalidRules)
	case r.VIPChance < 0 || r.VIPChance > 1:
		return fmt.Errorf("%w: vip chance %.2f outside [0,1]", ErrInvalidRules, r.VIPChance)
	}
	return nil
}

// StateFor derives the cooking state from elapsed cooking seconds
func (r Rules) StateFor(elapsed int) CookingState {
	switch {
	case elapsed <= r.RawUntil:
		return CookingStateRaw
	case elapsed <= r.PerfectUntil:
		return CookingStatePerfect
	default:
		return CookingStateBurnt
	}
}

// Points scores serving a piece of seaweed in the given state to a customer with the given order
func (r Rules) Points(order Order, state CookingState) int {
	if Order(state) != order && order != OrderAny {
		return r.MismatchPoints
	}
	if state == CookingStatePerfect {
		return r.PerfectPoints
	}
	return r.MatchPoints
}
