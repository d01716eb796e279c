package ingest

import "jobboard-engine/internal/domain"

// SeenSet is the per-run pre-filter: exact title+company, no dates, no
// store access. Each run creates its own.
type SeenSet struct {
	m map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{m: make(map[string]struct{})}
}

// Add reports whether p is new to this run, recording it if so.
func (s *SeenSet) Add(p domain.Posting) bool {
	k := p.JobTitle + "\x00" + p.CompanyName
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = struct{}{}
	return true
}

func (s *SeenSet) Len() int { return len(s.m) }
