package scans

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is the timestamp format used across the dashboard.
const DisplayLayout = "Jan 2, 2006 3:04 PM"

// EmptyValue is rendered for missing timestamps and values.
const EmptyValue = "—"

// maxEpochMillis is the largest timestamp a browser Date accepts.
const maxEpochMillis = 8.64e15

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO timestamp or a decimal epoch. Zone-less ISO
// forms are UTC. Numeric strings of at most 10 characters are seconds, longer
// ones are milliseconds.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	if !isDecimal(s) {
		return time.Time{}, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, false
	}
	ms := n
	if len(s) <= 10 {
		ms = n * 1000
	}
	if math.IsInf(ms, 0) || ms > maxEpochMillis {
		return time.Time{}, false
	}
	sec := math.Floor(ms / 1000)
	nsec := math.Round((ms - sec*1000) * 1e6)
	return time.Unix(int64(sec), int64(nsec)).UTC(), true
}

// isDecimal matches digits with an optional fractional part.
func isDecimal(s string) bool {
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || !allDigits(whole) {
		return false
	}
	if hasDot {
		return frac != "" && allDigits(frac)
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatTimestamp formats raw with DisplayLayout, or returns EmptyValue.
func FormatTimestamp(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return EmptyValue
	}
	return FormatTime(t)
}

// FormatTime formats t with DisplayLayout; the zero time renders as EmptyValue.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return EmptyValue
	}
	return t.UTC().Format(DisplayLayout)
}
