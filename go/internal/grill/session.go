package grill

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Session is the single writer of game state. Every transition holds the
// session lock for its whole duration, so tick, flip and serve never interleave.
type Session struct {
	rules Rules
	rand  RandomSource
	ids   IDGenerator
	clock clockwork.Clock

	mu            sync.Mutex
	version       uint64
	id            uuid.UUID
	score         int
	level         int
	timeRemaining int
	running       bool
	paused        bool
	language      Language
	startedAt     *time.Time
	served        int
	seaweed       []Seaweed
	customers     []Customer
}

// Option configures a Session
type Option func(*Session)

// WithRandom overrides the random source used for new customers
func WithRandom(r RandomSource) Option {
	return func(s *Session) { s.rand = r }
}

// WithIDGenerator overrides how seaweed and customer ids are minted
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) { s.ids = g }
}

// WithClock overrides the clock used to stamp session start times
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// NewSession creates an idle session. Call Start to begin play.
func NewSession(rules Rules, opts ...Option) *Session {
	s := &Session{
		rules:         rules,
		rand:          DefaultRandom(),
		ids:           UUIDGenerator(),
		clock:         clockwork.NewRealClock(),
		level:         1,
		timeRemaining: rules.SessionLength,
		language:      LanguageEnglish,
		seaweed:       []Seaweed{},
		customers:     []Customer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules the session was created with
func (s *Session) Rules() Rules {
	return s.rules
}

// Start resets the session and begins a new round. It always succeeds and
// keeps the current language.
func (s *Session) Start() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.version++
	s.id = uuid.New()
	s.score = 0
	s.level = 1
	s.timeRemaining = s.rules.SessionLength
	s.running = true
	s.paused = false
	s.startedAt = &now
	s.served = 0

	s.seaweed = make([]Seaweed, 0, s.rules.SeaweedCap)
	for range s.rules.SeaweedCap {
		s.seaweed = append(s.seaweed, s.newSeaweed())
	}
	s.customers = []Customer{{
		ID:           s.ids.NewCustomerID(),
		Kind:         CustomerKindRegular,
		Order:        OrderPerfect,
		Patience:     s.rules.InitialPatience,
		Satisfaction: s.rules.InitialSatisfaction,
	}}

	return s.snapshotLocked()
}

// TogglePause flips the paused flag
func (s *Session) TogglePause() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = !s.paused
	s.version++
	return s.snapshotLocked()
}

// Tick advances the session by one second. It does nothing unless the
// session is running and not paused.
func (s *Session) Tick() (TickOutcome, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.paused {
		return TickOutcome{}, s.snapshotLocked()
	}

	s.version++
	s.timeRemaining = max(0, s.timeRemaining-1)

	for i := range s.seaweed {
		s.seaweed[i].CookingElapsed++
		s.seaweed[i].State = s.rules.StateFor(s.seaweed[i].CookingElapsed)
	}

	for i := range s.customers {
		s.customers[i].Patience = max(0, s.customers[i].Patience-s.rules.PatienceDecay)
		s.customers[i].Satisfaction = max(0, s.customers[i].Satisfaction-s.rules.SatisfactionDecay)
	}

	out := TickOutcome{Applied: true}
	if s.timeRemaining == 0 {
		s.running = false
		out.Ended = true
	}
	return out, s.snapshotLocked()
}

// Flip takes a piece of seaweed off direct heat, resetting its cooking time.
// Unknown ids and sessions that are not running are ignored.
func (s *Session) Flip(seaweedID string) (bool, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false, s.snapshotLocked()
	}

	i := slices.IndexFunc(s.seaweed, func(sw Seaweed) bool { return sw.ID == seaweedID })
	if i < 0 {
		return false, s.snapshotLocked()
	}
	s.seaweed[i].CookingElapsed = 0
	s.seaweed[i].State = s.rules.StateFor(0)
	s.version++
	return true, s.snapshotLocked()
}

// Serve hands a piece of seaweed to a customer, scores it and replenishes
// the grill and the queue. Unknown ids and sessions that are not running are
// ignored.
func (s *Session) Serve(customerID, seaweedID string) (ServeOutcome, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := ServeOutcome{CustomerID: customerID, SeaweedID: seaweedID}
	if !s.running {
		return out, s.snapshotLocked()
	}

	ci := slices.IndexFunc(s.customers, func(c Customer) bool { return c.ID == customerID })
	si := slices.IndexFunc(s.seaweed, func(sw Seaweed) bool { return sw.ID == seaweedID })
	if ci < 0 || si < 0 {
		return out, s.snapshotLocked()
	}

	customer := s.customers[ci]
	seaweed := s.seaweed[si]

	out.Applied = true
	s.version++
	out.Order = customer.Order
	out.CookingState = seaweed.State
	out.Points = s.rules.Points(customer.Order, seaweed.State)
	s.score += out.Points
	s.served++

	s.seaweed = slices.Delete(s.seaweed, si, si+1)
	if len(s.seaweed) < s.rules.SeaweedCap {
		s.seaweed = append(s.seaweed, s.newSeaweed())
	}

	s.customers = slices.Delete(s.customers, ci, ci+1)
	if len(s.customers) < s.rules.CustomerCap {
		s.customers = append(s.customers, s.newCustomer())
	}

	return out, s.snapshotLocked()
}

// SetLanguage changes the display language. It has no gameplay effect.
func (s *Session) SetLanguage(lang Language) (bool, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !lang.IsValid() {
		return false, s.snapshotLocked()
	}
	s.language = lang
	s.version++
	return true, s.snapshotLocked()
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CustomersServed returns how many serves were applied in the current round
func (s *Session) CustomersServed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:       s.version,
		SessionID:     s.id,
		Score:         s.score,
		Level:         s.level,
		TimeRemaining: s.timeRemaining,
		IsRunning:     s.running,
		IsPaused:      s.paused,
		Language:      s.language,
		Seaweed:       slices.Clone(s.seaweed),
		Customers:     slices.Clone(s.customers),
	}
	if s.startedAt != nil {
		t := *s.startedAt
		snap.StartedAt = &t
	}
	return snap
}

func (s *Session) newSeaweed() Seaweed {
	return Seaweed{
		ID:             s.ids.NewSeaweedID(),
		State:          s.rules.StateFor(0),
		CookingElapsed: 0,
	}
}

func (s *Session) newCustomer() Customer {
	kind := CustomerKindRegular
	if s.rand.Float64() < s.rules.VIPChance {
		kind = CustomerKindVIP
	}
	return Customer{
		ID:           s.ids.NewCustomerID(),
		Kind:         kind,
		Order:        Orders[s.rand.IntN(len(Orders))],
		Patience:     s.rules.InitialPatience,
		Satisfaction: s.rules.InitialSatisfaction,
	}
}
