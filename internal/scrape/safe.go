package scrape

import (
	"context"
	"fmt"
	"time"

	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/scrape/types"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Safe runs one adapter behind its own deadline. Errors, timeouts and panics
// are logged and turned into an empty result for that source, so one broken
// site never affects the others.
func Safe(ctx context.Context, f types.Fetcher, timeout time.Duration, log *zap.SugaredLogger) (res types.ScrapeResult) {
	res = types.ScrapeResult{Source: f.Name()}
	log = logging.OrNop(log)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("adapter panic", "source", f.Name(), "panic", fmt.Sprint(r))
			res = types.ScrapeResult{Source: f.Name()}
		}
	}()

	start := time.Now()
	log.Infow("fetching", "source", f.Name())
	out, err := f.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnw("adapter timed out", "source", f.Name(), "timeout", timeout, "err", err)
		} else {
			log.Warnw("adapter failed", "source", f.Name(), "err", err)
		}
		return res
	}

	out.Source = f.Name()
	log.Infow("fetched", "source", f.Name(), "count", len(out.Postings), "took", time.Since(start).Round(time.Millisecond))
	return out
}
