package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/types"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type stubFetcher struct {
	name     domain.Source
	postings []domain.Posting
	err      error
	delay    time.Duration
}

func (s stubFetcher) Name() domain.Source { return s.name }

func (s stubFetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return types.ScrapeResult{}, ctx.Err()
		}
	}
	if s.err != nil {
		return types.ScrapeResult{}, s.err
	}
	return types.ScrapeResult{Source: s.name, Postings: s.postings}, nil
}

func ts(s string) *domain.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return domain.TimestampPtr(t)
}

func postings(src domain.Source, n int) []domain.Posting {
	out := make([]domain.Posting, n)
	for i := range out {
		out[i] = domain.Posting{
			Source:      src,
			JobTitle:    fmt.Sprintf("%s role %d", src, i),
			CompanyName: "Acme",
			DatePosted:  ts("2024-01-01T00:00:00Z"),
		}
	}
	return out
}

func newOrch(s *memStore, concurrent bool, fs ...types.Fetcher) *Orchestrator {
	return &Orchestrator{
		Fetchers:      fs,
		Engine:        NewEngine(s),
		SourceTimeout: time.Second,
		Concurrent:    concurrent,
		InRunDedup:    true,
	}
}

func TestRunIsolatesFailingSource(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		t.Run(fmt.Sprintf("concurrent=%v", concurrent), func(t *testing.T) {
			s := &memStore{}
			o := newOrch(s, concurrent,
				stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 5)},
				stubFetcher{name: domain.SourceWeWorkRemotely, postings: postings(domain.SourceWeWorkRemotely, 3)},
				stubFetcher{name: domain.SourceRemoteCo, err: errors.New("connection refused")},
			)

			sum, err := o.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 5, sum.Counts[domain.SourceRemoteOK])
			assert.Equal(t, 3, sum.Counts[domain.SourceWeWorkRemotely])
			assert.Equal(t, 0, sum.Counts[domain.SourceRemoteCo])
			assert.Equal(t, 8, sum.Total)
			assert.Equal(t, 8, sum.Checked)
			assert.Equal(t, 8, s.finds)
			assert.Equal(t, 8, sum.Inserted)

			b, err := json.Marshal(sum)
			require.NoError(t, err)
			assert.JSONEq(t, `{"remoteok":5,"weworkremotely":3,"remoteco":0,"total":8}`, string(b))
			assert.Equal(t, `{"remoteok":5,"weworkremotely":3,"remoteco":0,"total":8}`, string(b), "source order")
		})
	}
}

func TestRunIsIdempotent(t *testing.T) {
	s := &memStore{}
	o := newOrch(s, true,
		stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 4)},
		stubFetcher{name: domain.SourceRemoteCo, postings: append(postings(domain.SourceRemoteCo, 2),
			domain.Posting{Source: domain.SourceRemoteCo, JobTitle: "Undated", CompanyName: "Acme"})},
	)

	first, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, first.Inserted)

	second, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 7, second.Skipped)
	assert.Equal(t, 7, s.count())
}

func TestRunInRunFilter(t *testing.T) {
	s := &memStore{}
	dup := domain.Posting{Source: domain.SourceRemoteOK, JobTitle: "Go Dev", CompanyName: "Acme", DatePosted: ts("2024-01-01T00:00:00Z")}
	other := dup
	other.Source = domain.SourceWeWorkRemotely
	other.DatePosted = ts("2024-01-05T00:00:00Z")

	o := newOrch(s, false,
		stubFetcher{name: domain.SourceRemoteOK, postings: []domain.Posting{dup}},
		stubFetcher{name: domain.SourceWeWorkRemotely, postings: []domain.Posting{other}},
	)

	sum, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total, "counts are adapter output")
	assert.Equal(t, 1, sum.Checked)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, s.count())

	// without the pre-filter the store check decides: different day, new record
	s = &memStore{}
	o.Engine = NewEngine(s)
	o.InRunDedup = false
	sum, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Checked)
	assert.Equal(t, 2, s.count())
}

func TestRunProcessesInSourceOrder(t *testing.T) {
	s := &memStore{}
	var got []string
	o := newOrch(s, true,
		stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 2), delay: 50 * time.Millisecond},
		stubFetcher{name: domain.SourceWeWorkRemotely, postings: postings(domain.SourceWeWorkRemotely, 2)},
	)
	o.OnInsert = func(r domain.Record) { got = append(got, r.JobTitle) }

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"remoteok role 0", "remoteok role 1",
		"weworkremotely role 0", "weworkremotely role 1",
	}, got)
}

func TestRunSourceTimeout(t *testing.T) {
	s := &memStore{}
	o := newOrch(s, true,
		stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 2), delay: 5 * time.Second},
		stubFetcher{name: domain.SourceRemoteCo, postings: postings(domain.SourceRemoteCo, 1)},
	)
	o.SourceTimeout = 50 * time.Millisecond

	start := time.Now()
	sum, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, sum.Counts[domain.SourceRemoteOK])
	assert.Equal(t, 1, sum.Counts[domain.SourceRemoteCo])
}

func TestRunPropagatesStoreFailure(t *testing.T) {
	s := &memStore{failOn: "Acme"}
	o := newOrch(s, false, stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 3)})

	sum, err := o.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Checked)
	assert.Equal(t, 0, s.count())
}

func TestUpsertDayWindow(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	e := NewEngine(s)

	base := domain.Posting{Source: domain.SourceRemoteCo, JobTitle: "Go Dev", CompanyName: "Acme", DatePosted: ts("2024-03-01T00:00:01Z")}
	out, rec, err := e.Upsert(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)
	require.NotNil(t, rec)

	late := base
	late.DatePosted = ts("2024-03-01T23:59:59Z")
	out, rec, err = e.Upsert(ctx, late)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out)
	require.NotNil(t, rec)
	assert.Equal(t, "2024-03-01T00:00:01+00:00", rec.DatePosted.String(), "existing record untouched")

	next := base
	next.DatePosted = ts("2024-03-02T00:00:01Z")
	out, _, err = e.Upsert(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out, "re-listing on the next UTC day")

	// a non-UTC offset still lands in the UTC day
	offset, err := time.Parse(time.RFC3339, "2024-03-02T01:30:00+02:00")
	require.NoError(t, err)
	shifted := base
	shifted.DatePosted = domain.TimestampPtr(offset)
	out, _, err = e.Upsert(ctx, shifted)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out, "23:30 UTC on March 1")
}

func TestUpsertUndated(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}
	e := NewEngine(s)

	dated := domain.Posting{JobTitle: "Go Dev", CompanyName: "Acme", DatePosted: ts("2024-03-01T12:00:00Z")}
	_, _, err := e.Upsert(ctx, dated)
	require.NoError(t, err)

	out, rec, err := e.Upsert(ctx, domain.Posting{JobTitle: "Go Dev", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out, "title+company alone")
	require.NotNil(t, rec)

	out, _, err = e.Upsert(ctx, domain.Posting{JobTitle: "Rust Dev", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	// an undated record also absorbs later dated postings
	out, _, err = e.Upsert(ctx, domain.Posting{JobTitle: "Rust Dev", CompanyName: "Acme", DatePosted: ts("2024-03-05T08:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out)
}

func TestUpsertRejectsMissingFields(t *testing.T) {
	s := &memStore{}
	e := NewEngine(s)

	for _, p := range []domain.Posting{
		{JobTitle: "", CompanyName: "Acme"},
		{JobTitle: "Go Dev", CompanyName: "   "},
	} {
		out, rec, err := e.Upsert(context.Background(), p)
		assert.Equal(t, Invalid, out)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, domain.ErrInvalidPosting)
	}
	assert.Equal(t, 0, s.finds)
	assert.Equal(t, 0, s.count())
}

func TestUpsertConcurrentSameKey(t *testing.T) {
	s := &memStore{delay: 5 * time.Millisecond}
	e := NewEngine(s)
	p := domain.Posting{JobTitle: "Go Dev", CompanyName: "Acme", DatePosted: ts("2024-03-01T12:00:00Z")}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, _, err := e.Upsert(context.Background(), p)
			assert.NoError(t, err)
			if out == Inserted {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, s.count())
	assert.Equal(t, 0, e.locks.size(), "released locks are dropped")
}

func TestUpsertConcurrentDatedAndUndated(t *testing.T) {
	dated := domain.Posting{JobTitle: "Go Dev", CompanyName: "Acme", DatePosted: ts("2024-03-01T12:00:00Z")}
	undated := domain.Posting{JobTitle: "Go Dev", CompanyName: "Acme"}

	for i := 0; i < 10; i++ {
		s := &memStore{delay: 5 * time.Millisecond}
		e := NewEngine(s)

		var wg sync.WaitGroup
		outcomes := make([]Outcome, 2)
		for j, p := range []domain.Posting{dated, undated} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, _, err := e.Upsert(context.Background(), p)
				assert.NoError(t, err)
				outcomes[j] = out
			}()
		}
		wg.Wait()

		assert.ElementsMatch(t, []Outcome{Inserted, Duplicate}, outcomes)
		assert.Equal(t, 1, s.count())
	}
}

func TestRunnerStatus(t *testing.T) {
	s := &memStore{}
	o := newOrch(s, false, stubFetcher{name: domain.SourceRemoteOK, postings: postings(domain.SourceRemoteOK, 2)})
	o.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	var completed []Summary
	r := NewRunner(o, nil)
	r.OnComplete = func(sum Summary, err error) { completed = append(completed, sum) }

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	st := r.Status()
	assert.False(t, st.Running)
	assert.Equal(t, "2024-01-01T00:00:00Z", st.LastRunAt)
	assert.Equal(t, "2024-01-01T00:00:00Z", st.LastOkAt)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 2, st.LastInserted)
	require.NotNil(t, st.LastSummary)
	assert.Equal(t, 2, st.LastSummary.Total)
	require.Len(t, completed, 1)

	s.failOn = "Acme"
	s.recs = nil
	_, err = r.Run(context.Background())
	require.Error(t, err)
	st = r.Status()
	assert.Contains(t, st.LastError, "store unavailable")
	assert.Equal(t, "2024-01-01T00:00:00Z", st.LastOkAt)
}

func TestSummaryJSONEmpty(t *testing.T) {
	b, err := json.Marshal(newSummary(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, `{"total":0}`, string(b))
}
