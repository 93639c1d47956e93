package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2026, 3, 1, 5, 0, 0, 0, loc) // 2026-02-28 19:00 UTC

	assert.Equal(t, "2026-02-28", DayKey(local))
	assert.Equal(t, "2026-02", MonthKey(local))
}

func TestRolledOver(t *testing.T) {
	assert.False(t, RolledOver("2026-10", "2026-10"))
	assert.True(t, RolledOver("2026-09", "2026-10"))
	assert.True(t, RolledOver("", "2026-10"), "uninitialized period must roll over")
}

func TestNextBoundaries(t *testing.T) {
	now := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), NextDayStart(now))
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), NextMonthStart(now))
}
