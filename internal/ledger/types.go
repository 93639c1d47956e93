package ledger

import (
	"context"
	"time"
)

// why the breaker is tripped
type PauseReason string

const (
	PauseNone    PauseReason = ""
	PauseDaily   PauseReason = "daily"
	PauseMonthly PauseReason = "monthly"
	PauseBoth    PauseReason = "daily_and_monthly"
)

// singleton spending accumulator shared by every process instance
type Ledger struct {
	DailyDate     string      `json:"daily_date"`
	DailyAmount   float64     `json:"daily_amount"`
	MonthlyMonth  string      `json:"monthly_month"`
	MonthlyAmount float64     `json:"monthly_amount"`
	Paused        bool        `json:"paused"`
	PauseReason   PauseReason `json:"pause_reason,omitempty"`
}

// spending ceilings in USD
type Limits struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
}

// point-in-time view of the ledger for operators
type Status struct {
	Ledger
	Limits           Limits    `json:"limits"`
	DailyRemaining   float64   `json:"daily_remaining"`
	MonthlyRemaining float64   `json:"monthly_remaining"`
	DailyResetAt     time.Time `json:"daily_reset_at"`
	MonthlyResetAt   time.Time `json:"monthly_reset_at"`
}

// durable home of the ledger row. both methods apply any pending period
// reset in the same atomic operation as the read or write.
type Store interface {
	Load(ctx context.Context, now time.Time, limits Limits) (*Ledger, error)
	Add(ctx context.Context, amount float64, now time.Time, limits Limits) (*Ledger, error)
}
