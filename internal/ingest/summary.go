package ingest

import (
	"bytes"
	"encoding/json"
	"time"

	"jobboard-engine/internal/domain"
)

// Summary reports one run. Counts are what each adapter returned (0 for a
// failed source); Checked, Inserted and Skipped describe the dedup pass.
type Summary struct {
	Sources    []domain.Source
	Counts     map[domain.Source]int
	Total      int
	Checked    int
	Inserted   int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

func newSummary(startedAt time.Time) Summary {
	return Summary{Counts: make(map[domain.Source]int), StartedAt: startedAt}
}

func (s *Summary) add(src domain.Source, n int) {
	if _, ok := s.Counts[src]; !ok {
		s.Sources = append(s.Sources, src)
	}
	s.Counts[src] += n
	s.Total += n
}

// MarshalJSON renders {"<source>": n, ..., "total": n} in source order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, src := range s.Sources {
		k, _ := json.Marshal(string(src))
		buf.Write(k)
		buf.WriteByte(':')
		v, _ := json.Marshal(s.Counts[src])
		buf.Write(v)
		buf.WriteByte(',')
	}
	buf.WriteString(`"total":`)
	v, _ := json.Marshal(s.Total)
	buf.Write(v)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
