// Package ledger is the global spending circuit breaker. Every billable AI
// call adds its cost here; once either the daily or the monthly ceiling is
// reached, all metered extraction is refused until that period rolls over.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"codeberg.org/mise/server/internal/metrics"
	"codeberg.org/mise/server/internal/period"
)

type Service struct {
	store  Store
	limits Limits
	now    func() time.Time
}

// creates a ledger service over the given store
func NewService(store Store, limits Limits) *Service {
	return &Service{
		store:  store,
		limits: limits,
		now:    time.Now,
	}
}

// overrides the wall clock (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// returns the configured ceilings
func (s *Service) Limits() Limits {
	return s.limits
}

// atomically adds amount to the daily and monthly accumulators.
// non-positive amounts are ignored but still apply pending resets.
func (s *Service) RecordSpend(ctx context.Context, amount float64) (*Ledger, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	l, err := s.store.Add(ctx, amount, s.now(), s.limits)
	if err != nil {
		return nil, fmt.Errorf("failed to record spend: %w", err)
	}

	if amount > 0 {
		metrics.SpendUSD.Add(amount)
	}

	metrics.ObserveLedger(l.DailyAmount, l.MonthlyAmount, l.Paused)
	return l, nil
}

// reports the breaker state after applying pending resets
func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	l, err := s.store.Load(ctx, s.now(), s.limits)
	if err != nil {
		return false, fmt.Errorf("failed to load spending ledger: %w", err)
	}

	metrics.ObserveLedger(l.DailyAmount, l.MonthlyAmount, l.Paused)
	return l.Paused, nil
}

// returns a snapshot with limits, headroom and reset times
func (s *Service) Status(ctx context.Context) (*Status, error) {
	now := s.now()

	l, err := s.store.Load(ctx, now, s.limits)
	if err != nil {
		return nil, fmt.Errorf("failed to load spending ledger: %w", err)
	}

	return &Status{
		Ledger:           *l,
		Limits:           s.limits,
		DailyRemaining:   math.Max(s.limits.Daily-l.DailyAmount, 0),
		MonthlyRemaining: math.Max(s.limits.Monthly-l.MonthlyAmount, 0),
		DailyResetAt:     period.NextDayStart(now),
		MonthlyResetAt:   period.NextMonthStart(now),
	}, nil
}
