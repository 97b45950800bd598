package grill

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// RandomSource supplies the randomness used when new customers arrive
type RandomSource interface {
	// Float64 returns a number in [0.0, 1.0)
	Float64() float64
	// IntN returns a number in [0, n)
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) Float64() float64 { return rand.Float64() }
func (defaultRandom) IntN(n int) int   { return rand.IntN(n) }

// DefaultRandom returns a RandomSource backed by the global math/rand/v2 generator
func DefaultRandom() RandomSource {
	return defaultRandom{}
}

// IDGenerator creates identifiers for new seaweed and customers
type IDGenerator interface {
	NewSeaweedID() string
	NewCustomerID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewSeaweedID() string  { return "seaweed-" + uuid.NewString() }
func (uuidGenerator) NewCustomerID() string { return "customer-" + uuid.NewString() }

// UUIDGenerator returns an IDGenerator producing prefixed random UUIDs
func UUIDGenerator() IDGenerator {
	return uuidGenerator{}
}
