package ingest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"
)

// memStore mirrors the SQLite semantics: unique (title, company, UTC day).
type memStore struct {
	mu      sync.Mutex
	recs    []domain.Record
	finds   int
	inserts int
	failOn  string // company that makes FindMatching fail
	delay   time.Duration
}

func (m *memStore) FindMatching(_ context.Context, title, company string, w *domain.DayWindow) (*domain.Record, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.failOn != "" && company == m.failOn {
		return nil, errStoreDown
	}
	for i := range m.recs {
		r := m.recs[i]
		if r.JobTitle != title || r.CompanyName != company {
			continue
		}
		if w == nil {
			return &r, nil
		}
		if r.DatePosted == nil || w.Contains(r.DatePosted.Time) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) Insert(_ context.Context, p domain.Posting) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.Key() == p.Key() {
			return domain.Record{}, store.ErrDuplicate
		}
	}
	m.inserts++
	rec := domain.Record{ID: strconv.Itoa(len(m.recs) + 1), Posting: p, CreatedAt: time.Now()}
	m.recs = append(m.recs, rec)
	return rec, nil
}

func (m *memStore) List(context.Context, store.ListOpts) ([]domain.Record, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record(nil), m.recs...), len(m.recs), nil
}

func (m *memStore) Get(_ context.Context, id string) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Record{}, store.ErrNotFound
}

func (m *memStore) Delete(context.Context, string) error { return nil }
func (m *memStore) Close() error                         { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}
