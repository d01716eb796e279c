package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRendersOffsetWithoutFraction(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 123456789, time.UTC))
	assert.Equal(t, "2024-01-01T00:00:00+00:00", ts.String())

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-01T00:00:00+00:00"`, string(b))

	loc := time.FixedZone("CET", 3600)
	assert.Equal(t, "2024-03-01T10:00:00+01:00", NewTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 5, loc)).String())
}

func TestTimestampUnmarshal(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T23:59:59.750+02:00"`), &ts))
	assert.Equal(t, "2024-03-01T23:59:59+02:00", ts.String())
	assert.Equal(t, "2024-03-01", ts.UTCDay())
}

func TestDayWindowBoundaries(t *testing.T) {
	w := DayWindowFor(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.End)

	assert.True(t, w.Contains(time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC)))

	// 01:00 at +02:00 is the previous UTC day
	w2 := DayWindowFor(time.Date(2024, 3, 2, 1, 0, 0, 0, time.FixedZone("", 2*3600)))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w2.Start)
}

func TestPostingValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Posting
		wantErr bool
	}{
		{"complete", Posting{JobTitle: "Go Engineer", CompanyName: "Acme"}, false},
		{"blank title", Posting{JobTitle: "  ", CompanyName: "Acme"}, true},
		{"blank company", Posting{JobTitle: "Go Engineer"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPosting)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostingKey(t *testing.T) {
	a := Posting{JobTitle: "SRE", CompanyName: "Acme", DatePosted: TimestampPtr(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC))}
	b := Posting{JobTitle: "SRE", CompanyName: "Acme", DatePosted: TimestampPtr(time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC))}
	c := Posting{JobTitle: "SRE", CompanyName: "Acme", DatePosted: TimestampPtr(time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC))}
	undated := Posting{JobTitle: "SRE", CompanyName: "Acme"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, a.Key(), undated.Key())
}

func TestPostingJSONShape(t *testing.T) {
	p := Posting{
		Source:      SourceRemoteCo,
		JobTitle:    "Developer",
		CompanyName: "Acme",
		DatePosted:  TimestampPtr(time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC)),
		ApplyURL:    "https://remote.co/job/1",
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "remoteco", m["source"])
	assert.Equal(t, "2023-12-29T00:00:00+00:00", m["datePosted"])
	assert.Nil(t, m["imageUrl"])
	assert.Equal(t, []any{}, m["location"])
	assert.Equal(t, []any{}, m["tags"])

	var back Posting
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p.JobTitle, back.JobTitle)
	assert.Equal(t, p.DatePosted.String(), back.DatePosted.String())
}

func TestParseSource(t *testing.T) {
	s, ok := ParseSource("Remote.co")
	assert.True(t, ok)
	assert.Equal(t, SourceRemoteCo, s)

	s, ok = ParseSource("REMOTEOK")
	assert.True(t, ok)
	assert.Equal(t, SourceRemoteOK, s)

	_, ok = ParseSource("indeed")
	assert.False(t, ok)
}
