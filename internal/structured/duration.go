package structured

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var isoDuration = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// renders an ISO-8601 duration ("PT1H15M") as "1 hr 15 min". values that are
// not ISO durations are returned trimmed; zero durations become "".
func FormatDuration(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds, _ := strconv.ParseFloat(m[4], 64)

	total := days*24*60 + hours*60 + minutes + int(math.Round(seconds/60))
	if total <= 0 {
		return ""
	}

	h, mins := total/60, total%60

	switch {
	case h > 0 && mins > 0:
		return fmt.Sprintf("%d hr %d min", h, mins)
	case h > 0:
		return fmt.Sprintf("%d hr", h)
	default:
		return fmt.Sprintf("%d min", mins)
	}
}
