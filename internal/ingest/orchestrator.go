package ingest

import (
	"context"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/scrape"
	"jobboard-engine/internal/scrape/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs every adapter once, aggregates their postings in source
// order and feeds them one at a time to the Engine.
type Orchestrator struct {
	Fetchers      []types.Fetcher
	Engine        *Engine
	SourceTimeout time.Duration
	Concurrent    bool
	InRunDedup    bool
	Log           *zap.SugaredLogger
	Now           func() time.Time

	// OnInsert is called for every record the run creates.
	OnInsert func(domain.Record)
}

// Run never fails because of a source; only store errors abort it. The
// partial summary is returned alongside such an error.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	log := logging.OrNop(o.Log)
	now := o.Now
	if now == nil {
		now = time.Now
	}

	sum := newSummary(now().UTC())
	results := o.collect(ctx, log)

	var seen *SeenSet
	if o.InRunDedup {
		seen = NewSeenSet()
	}

	for _, res := range results {
		sum.add(res.Source, len(res.Postings))
	}

	for _, res := range results {
		for _, p := range res.Postings {
			if seen != nil && !seen.Add(p) {
				sum.Skipped++
				continue
			}

			outcome, rec, err := o.Engine.Upsert(ctx, p)
			if outcome == Invalid {
				log.Warnw("skipping invalid posting", "source", res.Source, "err", err)
				continue
			}
			sum.Checked++
			if err != nil {
				sum.FinishedAt = now().UTC()
				log.Errorw("store failure, aborting run", "source", res.Source, "title", p.JobTitle, "company", p.CompanyName, "err", err)
				return sum, err
			}

			switch outcome {
			case Inserted:
				sum.Inserted++
				if o.OnInsert != nil && rec != nil {
					o.OnInsert(*rec)
				}
			case Duplicate:
				sum.Skipped++
			}
		}
	}

	sum.FinishedAt = now().UTC()
	log.Infow("run complete",
		"total", sum.Total,
		"checked", sum.Checked,
		"inserted", sum.Inserted,
		"skipped", sum.Skipped,
		"took", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond),
	)
	return sum, nil
}

// collect returns one result per fetcher, indexed like o.Fetchers.
func (o *Orchestrator) collect(ctx context.Context, log *zap.SugaredLogger) []types.ScrapeResult {
	results := make([]types.ScrapeResult, len(o.Fetchers))

	if !o.Concurrent {
		for i, f := range o.Fetchers {
			results[i] = scrape.Safe(ctx, f, o.SourceTimeout, log)
		}
		return results
	}

	// no WithContext: one source failing must not cancel the others
	var g errgroup.Group
	for i, f := range o.Fetchers {
		g.Go(func() error {
			results[i] = scrape.Safe(ctx, f, o.SourceTimeout, log)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
