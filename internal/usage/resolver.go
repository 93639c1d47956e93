// Package usage decides whether a caller may trigger another billable
// extraction, and charges the matching counter once one succeeds.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/mise/server/internal/metrics"
	"codeberg.org/mise/server/internal/period"
)

type Resolver struct {
	store   Store
	breaker Breaker
	limits  Limits
	now     func() time.Time
}

// creates a resolver over the usage store and the spending breaker
func NewResolver(store Store, breaker Breaker, limits Limits) *Resolver {
	return &Resolver{
		store:   store,
		breaker: breaker,
		limits:  limits,
		now:     time.Now,
	}
}

// overrides the wall clock (tests)
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}

// monthly ceiling for a signed-up tier
func (r *Resolver) monthlyLimit(tier Tier) int {
	switch tier {
	case TierPro:
		return Unlimited
	case TierBasic:
		return r.limits.BasicMonthly
	default:
		return r.limits.FreeMonthly
	}
}

// evaluates, in order: the spending breaker, the signed-up tier allowance,
// the anonymous lifetime allowance, and finally refuses untrackable callers.
func (r *Resolver) CanExtract(ctx context.Context, caller Caller) (*Decision, error) {
	d, err := r.evaluate(ctx, caller)
	if err != nil {
		return nil, err
	}

	if !d.Allowed {
		metrics.Denials.WithLabelValues(string(d.Reason)).Inc()
	}

	return d, nil
}

// reports the caller's standing without counting it as an attempt
func (r *Resolver) Summary(ctx context.Context, caller Caller) (*Decision, error) {
	return r.evaluate(ctx, caller)
}

func (r *Resolver) evaluate(ctx context.Context, caller Caller) (*Decision, error) {
	paused, err := r.breaker.IsPaused(ctx)
	if err != nil {
		return nil, err
	}

	if paused {
		return r.deny(&Decision{
			Reason:  ReasonSystemLimit,
			Message: "Recipe extraction is temporarily unavailable. Please try again later.",
		}), nil
	}

	if caller.Authenticated() {
		return r.checkUser(ctx, caller)
	}

	if caller.Fingerprint != "" {
		return r.checkAnonymous(ctx, caller)
	}

	return r.deny(&Decision{
		Reason:  ReasonNoTracking,
		Message: "Please sign up or enable device identification to extract recipes.",
	}), nil
}

func (r *Resolver) checkUser(ctx context.Context, caller Caller) (*Decision, error) {
	tier := ParseTier(string(caller.Tier))
	limit := r.monthlyLimit(tier)

	u, err := r.store.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	used := 0
	if u != nil && !period.RolledOver(u.MonthStarted, period.MonthKey(r.now())) {
		used = u.RecipesUsedThisMonth
	}

	if limit == Unlimited {
		return &Decision{Allowed: true, Remaining: Unlimited, Limit: Unlimited, Used: used, Tier: tier}, nil
	}

	if used < limit {
		return &Decision{Allowed: true, Remaining: limit - used, Limit: limit, Used: used, Tier: tier}, nil
	}

	message := "You've used all your free recipes this month. Upgrade for more."
	if tier == TierBasic {
		message = "You've reached your monthly recipe limit. Upgrade to Pro for unlimited recipes."
	}

	return r.deny(&Decision{
		Remaining: 0,
		Limit:     limit,
		Used:      used,
		Tier:      tier,
		Reason:    ReasonMonthlyLimit,
		Upgrade:   true,
		Message:   message,
	}), nil
}

func (r *Resolver) checkAnonymous(ctx context.Context, caller Caller) (*Decision, error) {
	limit := r.limits.InitialFreeRecipes

	a, err := r.store.GetAnonymous(ctx, caller.Fingerprint)
	if err != nil {
		return nil, err
	}

	used := 0
	if a != nil {
		used = a.RecipesUsedLifetime
	}

	if used < limit {
		return &Decision{Allowed: true, Remaining: limit - used, Limit: limit, Used: used, Tier: TierNone}, nil
	}

	return r.deny(&Decision{
		Remaining:      0,
		Limit:          limit,
		Used:           used,
		Tier:           TierNone,
		Reason:         ReasonInitialLimit,
		RequiresSignup: true,
		Message:        "Sign up for free to keep extracting recipes.",
	}), nil
}

func (r *Resolver) deny(d *Decision) *Decision {
	d.Allowed = false
	return d
}

// charges one extraction to the caller and returns what remains.
// it must only be called after an extraction succeeded. the underlying
// increment is a check-and-increment, so when concurrent requests race for
// the last unit exactly one commit succeeds and the others get ErrLimitReached.
func (r *Resolver) CommitExtraction(ctx context.Context, caller Caller) (int, error) {
	if caller.Authenticated() {
		tier := ParseTier(string(caller.Tier))
		limit := r.monthlyLimit(tier)

		u, err := r.store.IncrementUser(ctx, caller.UserID, tier, period.MonthKey(r.now()), limit)
		if err != nil {
			if errors.Is(err, ErrLimitReached) {
				return 0, err
			}
			return 0, fmt.Errorf("failed to commit user extraction: %w", err)
		}

		if limit == Unlimited {
			return Unlimited, nil
		}

		return max(limit-u.RecipesUsedThisMonth, 0), nil
	}

	if caller.Fingerprint != "" {
		a, err := r.store.IncrementAnonymous(ctx, caller.Fingerprint, caller.IP, r.limits.InitialFreeRecipes)
		if err != nil {
			if errors.Is(err, ErrLimitReached) {
				return 0, err
			}
			return 0, fmt.Errorf("failed to commit anonymous extraction: %w", err)
		}

		return max(r.limits.InitialFreeRecipes-a.RecipesUsedLifetime, 0), nil
	}

	return 0, ErrUntracked
}
