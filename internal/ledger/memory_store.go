package ledger

import (
	"context"
	"sync"
	"time"
)

// implements Store in process memory; used by tests and local tooling
type MemoryStore struct {
	mu     sync.Mutex
	ledger Ledger
}

// creates an empty in-memory ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// returns the ledger after applying pending resets
func (s *MemoryStore) Load(_ context.Context, now time.Time, limits Limits) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyRollover(&s.ledger, now)
	Evaluate(&s.ledger, limits)

	snapshot := s.ledger
	return &snapshot, nil
}

// adds amount to both accumulators after applying pending resets
func (s *MemoryStore) Add(_ context.Context, amount float64, now time.Time, limits Limits) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyRollover(&s.ledger, now)
	s.ledger.DailyAmount += amount
	s.ledger.MonthlyAmount += amount
	Evaluate(&s.ledger, limits)

	snapshot := s.ledger
	return &snapshot, nil
}
