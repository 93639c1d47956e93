package admin

import "time"

// spending breaker snapshot for operators
type SpendingResponse struct {
	DailyDate        string    `json:"daily_date"`
	DailyAmount      float64   `json:"daily_amount"`
	DailyLimit       float64   `json:"daily_limit"`
	DailyRemaining   float64   `json:"daily_remaining"`
	DailyResetAt     time.Time `json:"daily_reset_at"`
	MonthlyMonth     string    `json:"monthly_month"`
	MonthlyAmount    float64   `json:"monthly_amount"`
	MonthlyLimit     float64   `json:"monthly_limit"`
	MonthlyRemaining float64   `json:"monthly_remaining"`
	MonthlyResetAt   time.Time `json:"monthly_reset_at"`
	Paused           bool      `json:"paused"`
	PauseReason      string    `json:"pause_reason,omitempty"`
}
