package scrape

import (
	"context"
	"testing"
	"time"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/scrape/types"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	name domain.Source
	fn   func(ctx context.Context) (types.ScrapeResult, error)
}

func (s stubFetcher) Name() domain.Source { return s.name }
func (s stubFetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	return s.fn(ctx)
}

func posting(title string) domain.Posting {
	return domain.Posting{Source: domain.SourceRemoteOK, JobTitle: title, CompanyName: "Acme"}
}

func TestSafe(t *testing.T) {
	log := logging.Nop()

	t.Run("passes results through", func(t *testing.T) {
		f := stubFetcher{name: domain.SourceRemoteOK, fn: func(context.Context) (types.ScrapeResult, error) {
			return types.ScrapeResult{Postings: []domain.Posting{posting("a"), posting("b")}}, nil
		}}
		res := Safe(context.Background(), f, time.Second, log)
		assert.Equal(t, domain.SourceRemoteOK, res.Source)
		assert.Len(t, res.Postings, 2)
	})

	t.Run("error yields empty", func(t *testing.T) {
		f := stubFetcher{name: domain.SourceRemoteCo, fn: func(context.Context) (types.ScrapeResult, error) {
			return types.ScrapeResult{Postings: []domain.Posting{posting("partial")}}, errors.New("network down")
		}}
		res := Safe(context.Background(), f, time.Second, log)
		assert.Equal(t, domain.SourceRemoteCo, res.Source)
		assert.Empty(t, res.Postings)
	})

	t.Run("panic yields empty", func(t *testing.T) {
		f := stubFetcher{name: domain.SourceWeWorkRemotely, fn: func(context.Context) (types.ScrapeResult, error) {
			panic("selector exploded")
		}}
		var res types.ScrapeResult
		require.NotPanics(t, func() { res = Safe(context.Background(), f, time.Second, log) })
		assert.Equal(t, domain.SourceWeWorkRemotely, res.Source)
		assert.Empty(t, res.Postings)
	})

	t.Run("timeout cancels the adapter", func(t *testing.T) {
		f := stubFetcher{name: domain.SourceRemoteOK, fn: func(ctx context.Context) (types.ScrapeResult, error) {
			<-ctx.Done()
			return types.ScrapeResult{}, ctx.Err()
		}}
		start := time.Now()
		res := Safe(context.Background(), f, 50*time.Millisecond, log)
		assert.Empty(t, res.Postings)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestBuildFetchersOrder(t *testing.T) {
	cfg := config.Default()
	fs := BuildFetchers(cfg, NewClient(cfg, nil), time.Now, logging.Nop())
	require.Len(t, fs, 3)
	assert.Equal(t, domain.SourceRemoteOK, fs[0].Name())
	assert.Equal(t, domain.SourceWeWorkRemotely, fs[1].Name())
	assert.Equal(t, domain.SourceRemoteCo, fs[2].Name())

	cfg.Sources.WeWorkRemotely.Enabled = false
	fs = BuildFetchers(cfg, NewClient(cfg, nil), time.Now, logging.Nop())
	require.Len(t, fs, 2)
	assert.Equal(t, domain.SourceRemoteOK, fs[0].Name())
	assert.Equal(t, domain.SourceRemoteCo, fs[1].Name())
}
