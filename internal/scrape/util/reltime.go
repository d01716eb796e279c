package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
)

var relativeRe = regexp.MustCompile(`(\d+)\s*(\w+)`)

// maxMagnitude bounds n so n hours still fits a time.Duration and month
// arithmetic cannot overflow; larger values are not real listing ages.
const maxMagnitude = 1_000_000

type relUnit int

const (
	unitNone relUnit = iota
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

func parseUnit(tok string) relUnit {
	switch strings.ToLower(tok) {
	case "h", "hour", "hours":
		return unitHour
	case "d", "day", "days":
		return unitDay
	case "w", "week", "weeks":
		return unitWeek
	case "mo", "month", "months":
		return unitMonth
	case "y", "year", "years":
		return unitYear
	default:
		return unitNone
	}
}

// ParseRelative turns "3 d", "11d", "2 months ago" into now minus that span.
// ok is false when the text has no number+unit, the unit is unknown or the
// result would fall before year 1; that is an absent date, not an error.
func ParseRelative(text string, now time.Time) (t time.Time, ok bool) {
	m := relativeRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxMagnitude {
		return time.Time{}, false
	}

	switch parseUnit(m[2]) {
	case unitHour:
		t = now.Add(-time.Duration(n) * time.Hour)
	case unitDay:
		t = now.AddDate(0, 0, -n)
	case unitWeek:
		t = now.AddDate(0, 0, -7*n)
	case unitMonth:
		t = subtractMonths(now, n)
	case unitYear:
		t = subtractMonths(now, 12*n)
	default:
		return time.Time{}, false
	}
	if t.UTC().Year() < 1 {
		return time.Time{}, false
	}
	return t.Round(0).Truncate(time.Second), true
}

// RelativeTimestamp is ParseRelative as a nullable canonical timestamp.
func RelativeTimestamp(text string, now time.Time) *domain.Timestamp {
	t, ok := ParseRelative(text, now)
	if !ok {
		return nil
	}
	return domain.TimestampPtr(t)
}

// ParseAbsolute reads machine-readable RFC 3339 dates, fractional seconds allowed.
func ParseAbsolute(text string) *domain.Timestamp {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return nil
	}
	return domain.TimestampPtr(t)
}

// subtractMonths clamps to the last day of the target month instead of
// overflowing (Mar 31 - 1 month = Feb 29 in a leap year, not Mar 2).
func subtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, -n, 0)
	last := daysIn(target.Year(), target.Month())
	if d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
