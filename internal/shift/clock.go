package shift

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Legacy attendance rows carry clock strings produced by locale formatters:
// Arabic-Indic digits, "ص"/"م" day-period markers, or English AM/PM. All
// comparisons run on the normalized zero-padded 24h form so lexicographic
// ordering matches chronological ordering within a day.

var asciiDigits = runes.Map(func(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
})

// NormalizeClock converts a clock string to "HH:MM" (24h, zero padded).
// Returns "" when the input cannot be understood; callers treat that as an
// unbounded window (fail open).
func NormalizeClock(s string) string {
	s, _, _ = transform.String(asciiDigits, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	period := 0 // 0 none, 1 AM, 2 PM
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "PM") || strings.Contains(s, "م"):
		period = 2
	case strings.Contains(upper, "AM") || strings.Contains(s, "ص"):
		period = 1
	}
	keep := strings.Builder{}
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ':' {
			keep.WriteRune(r)
		}
	}
	parts := strings.Split(keep.String(), ":")
	if len(parts) < 2 {
		return ""
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	if minute < 0 || minute > 59 || hour < 0 || hour > 23 {
		return ""
	}
	switch period {
	case 1:
		if hour == 12 {
			hour = 0
		}
	case 2:
		if hour < 12 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ClockHours converts a normalized clock string to fractional hours.
func ClockHours(clock string) (float64, bool) {
	norm := NormalizeClock(clock)
	if norm == "" {
		return 0, false
	}
	hour, _ := strconv.Atoi(norm[:2])
	minute, _ := strconv.Atoi(norm[3:])
	return float64(hour) + float64(minute)/60, true
}
