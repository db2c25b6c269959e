package form

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date layouts. UI dates are day-first without zero padding ("1.6.2024"),
// the backend speaks ISO calendar dates.
const (
	UIDateLayout  = "2.1.2006"
	ISODateLayout = "2006-01-02"
)

var dateLayouts = []string{
	UIDateLayout,
	ISODateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate interprets v as a calendar date. Strings in UI or ISO format and
// time.Time values are accepted; the result is truncated to midnight UTC.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return truncateDay(d), true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDay(t), true
			}
		}
	}
	return time.Time{}, false
}

// FormatUIDate renders t the way date inputs display it.
func FormatUIDate(t time.Time) string {
	return t.Format(UIDateLayout)
}

// FormatISODate renders t as yyyy-mm-dd.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// AddMonths adds months to t, clamping the day to the last day of the
// target month: 31.1.2024 plus one month is 29.2.2024, not 2.3.2024.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseNumber interprets v as a number. Strings may use a decimal comma and
// spaces (including non-breaking ones) as thousand separators: "1 234,50".
func ParseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\u00a0', '\u202f':
				return -1
			case ',':
				return '.'
			}
			return r
		}, n)
		if !isDecimal(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isDecimal accepts an optional sign, digits and at most one decimal point
// with at least one digit somewhere.
func isDecimal(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits, points := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

// FormatNumber renders f with a decimal comma, the inverse of ParseNumber.
func FormatNumber(f float64) string {
	return strings.Replace(strconv.FormatFloat(f, 'f', -1, 64), ".", ",", 1)
}
