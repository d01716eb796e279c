package domain

import (
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 with second precision and an explicit numeric offset.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Timestamp is an instant that never carries sub-second precision and always
// renders with an offset (+00:00, never Z).
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Round(0).Truncate(time.Second)}
}

func TimestampPtr(t time.Time) *Timestamp {
	ts := NewTimestamp(t)
	return &ts
}

func (t Timestamp) String() string {
	return t.Time.Format(TimestampLayout)
}

// UTCDay is the YYYY-MM-DD of the instant in UTC.
func (t Timestamp) UTCDay() string {
	return t.Time.UTC().Format(time.DateOnly)
}

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timestamp) UnmarshalText(b []byte) error {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*t = NewTimestamp(parsed)
	return nil
}

// DayWindow is the UTC calendar-day interval used by the dedup match key.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayWindowFor covers [00:00:00.000, 23:59:59.999] UTC of t's UTC date.
func DayWindowFor(t time.Time) DayWindow {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return DayWindow{
		Start: start,
		End:   start.Add(24*time.Hour - time.Millisecond),
	}
}

func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MarshalJSON shadows the promoted time.Time encoder, which would emit Z and nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	return t.UnmarshalText([]byte(s))
}
