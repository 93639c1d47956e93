package ledger

import (
	"time"

	"codeberg.org/mise/server/internal/period"
)

// applies lazy day/month rollover to l in place
func applyRollover(l *Ledger, now time.Time) {
	day := period.DayKey(now)
	month := period.MonthKey(now)

	if period.RolledOver(l.DailyDate, day) {
		l.DailyDate = day
		l.DailyAmount = 0
	}

	if period.RolledOver(l.MonthlyMonth, month) {
		l.MonthlyMonth = month
		l.MonthlyAmount = 0
	}
}

// derives the breaker state from the accumulators. a ceiling at or below
// zero disables that half of the breaker.
func Evaluate(l *Ledger, limits Limits) {
	daily := limits.Daily > 0 && l.DailyAmount >= limits.Daily
	monthly := limits.Monthly > 0 && l.MonthlyAmount >= limits.Monthly

	l.Paused = daily || monthly

	switch {
	case daily && monthly:
		l.PauseReason = PauseBoth
	case daily:
		l.PauseReason = PauseDaily
	case monthly:
		l.PauseReason = PauseMonthly
	default:
		l.PauseReason = PauseNone
	}
}
