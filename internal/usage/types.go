package usage

import (
	"context"
	"errors"
	"time"
)

// subscription level resolved from the caller's credentials
type Tier string

const (
	TierNone  Tier = "none"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
)

// normalizes a tier string; anything unrecognized is the free tier
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierBasic, TierPro:
		return Tier(s)
	default:
		return TierNone
	}
}

// remaining/limit value meaning "no ceiling"
const Unlimited = -1

// why an extraction was refused
type Reason string

const (
	ReasonSystemLimit  Reason = "system_limit"
	ReasonMonthlyLimit Reason = "monthly_limit"
	ReasonInitialLimit Reason = "initial_limit"
	ReasonNoTracking   Reason = "no_tracking"
)

var (
	// returned by a store increment when the row is already at its ceiling
	ErrLimitReached = errors.New("usage limit reached")

	// returned when a commit has neither a user nor a fingerprint to charge
	ErrUntracked = errors.New("caller has no user id or fingerprint")
)

// identifies who is asking for an extraction
type Caller struct {
	UserID      string
	Tier        Tier
	Fingerprint string
	IP          string
}

// reports whether the caller presented valid credentials
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// outcome of a quota check
type Decision struct {
	Allowed        bool   `json:"allowed"`
	Remaining      int    `json:"remaining"`
	Limit          int    `json:"limit"`
	Used           int    `json:"used"`
	Tier           Tier   `json:"tier,omitempty"`
	Reason         Reason `json:"reason,omitempty"`
	RequiresSignup bool   `json:"requiresSignup,omitempty"`
	Upgrade        bool   `json:"upgrade,omitempty"`
	Message        string `json:"message,omitempty"`
}

// per-tier allowances
type Limits struct {
	FreeMonthly        int
	BasicMonthly       int
	InitialFreeRecipes int
}

// monthly counter for a signed-up user
type UserUsage struct {
	UserID               string    `json:"user_id"`
	SubscriptionTier     Tier      `json:"subscription_tier"`
	RecipesUsedThisMonth int       `json:"recipes_used_this_month"`
	MonthStarted         string    `json:"month_started"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// lifetime counter for an anonymous device. it never resets: it only exists
// to grant a one-time allowance before signup is required.
type AnonymousUsage struct {
	Fingerprint         string    `json:"fingerprint"`
	RecipesUsedLifetime int       `json:"recipes_used_lifetime"`
	LastSeen            time.Time `json:"last_seen"`
	IP                  string    `json:"ip"`
}

// durable usage counters. increments are atomic check-and-increment
// operations: with a non-negative limit they fail with ErrLimitReached
// instead of exceeding it, so concurrent commits cannot overshoot.
type Store interface {
	GetUser(ctx context.Context, userID string) (*UserUsage, error)
	GetAnonymous(ctx context.Context, fingerprint string) (*AnonymousUsage, error)
	IncrementUser(ctx context.Context, userID string, tier Tier, month string, limit int) (*UserUsage, error)
	IncrementAnonymous(ctx context.Context, fingerprint, ip string, limit int) (*AnonymousUsage, error)
}

// the spending breaker, as seen by the resolver
type Breaker interface {
	IsPaused(ctx context.Context) (bool, error)
}
