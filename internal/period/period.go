// Package period centralizes calendar rollover for every lazily-reset counter.
package period

import "time"

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// returns the UTC calendar day key for t (YYYY-MM-DD)
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// returns the UTC calendar month key for t (YYYY-MM)
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// reports whether a stored period key is stale relative to the current one.
// an empty stored key has never been initialized and counts as rolled over.
func RolledOver(lastPeriod, currentPeriod string) bool {
	return lastPeriod != currentPeriod
}

// returns the first instant of the month after t, in UTC
func NextMonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// returns the first instant of the day after t, in UTC
func NextDayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}
