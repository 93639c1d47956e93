package usage

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mise/server/internal/period"
)

// implements Store in process memory; used by tests and local tooling
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]*UserUsage
	anonymous map[string]*AnonymousUsage
}

// creates an empty in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*UserUsage),
		anonymous: make(map[string]*AnonymousUsage),
	}
}

// returns the stored row, or nil if the user has never extracted
func (s *MemoryStore) GetUser(_ context.Context, userID string) (*UserUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	snapshot := *u
	return &snapshot, nil
}

// returns the stored row, or nil for an unseen fingerprint
func (s *MemoryStore) GetAnonymous(_ context.Context, fingerprint string) (*AnonymousUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anonymous[fingerprint]
	if !ok {
		return nil, nil
	}

	snapshot := *a
	return &snapshot, nil
}

// increments the monthly counter, resetting it first if month rolled over
func (s *MemoryStore) IncrementUser(_ context.Context, userID string, tier Tier, month string, limit int) (*UserUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = &UserUsage{UserID: userID}
		s.users[userID] = u
	}

	used := u.RecipesUsedThisMonth
	if period.RolledOver(u.MonthStarted, month) {
		used = 0
	}

	if limit >= 0 && used >= limit {
		if !ok {
			delete(s.users, userID)
		}
		return nil, ErrLimitReached
	}

	u.RecipesUsedThisMonth = used + 1
	u.MonthStarted = month
	u.SubscriptionTier = tier
	u.UpdatedAt = time.Now()

	snapshot := *u
	return &snapshot, nil
}

// increments the lifetime counter for a fingerprint
func (s *MemoryStore) IncrementAnonymous(_ context.Context, fingerprint, ip string, limit int) (*AnonymousUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anonymous[fingerprint]
	if !ok {
		a = &AnonymousUsage{Fingerprint: fingerprint}
	}

	if limit >= 0 && a.RecipesUsedLifetime >= limit {
		return nil, ErrLimitReached
	}

	a.RecipesUsedLifetime++
	a.LastSeen = time.Now()
	a.IP = ip
	s.anonymous[fingerprint] = a

	snapshot := *a
	return &snapshot, nil
}
