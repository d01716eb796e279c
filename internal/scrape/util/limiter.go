package util

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// slowWait is the pause after which a limiter wait is worth logging.
const slowWait = 250 * time.Millisecond

// HostLimiter paces requests per site so multi-page sources (remote.co
// categories) do not burst the same board. www.example.com and
// EXAMPLE.com:443 share one bucket.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
	log     *zap.SugaredLogger
}

// NewHostLimiter allows reqPerSec per site with the given burst. log may be nil.
func NewHostLimiter(reqPerSec float64, burst int, log *zap.SugaredLogger) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	if log != nil {
		log = log.Named("limiter")
	}
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Limit(reqPerSec),
		burst:   burst,
		log:     log,
	}
}

// hostKey reduces a URL to the site it paces: lowercased host, no port, no
// leading "www.". Unparseable or host-less URLs share the "_" bucket.
func hostKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return "_"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func (hl *HostLimiter) bucket(key string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	lim, ok := hl.buckets[key]
	if !ok {
		lim = rate.NewLimiter(hl.every, hl.burst)
		hl.buckets[key] = lim
	}
	return lim
}

// WaitURL blocks until the site of raw may be hit again or ctx ends. A nil
// limiter never waits.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	key := hostKey(raw)
	start := time.Now()
	if err := hl.bucket(key).Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited >= slowWait && hl.log != nil {
		hl.log.Debugw("paced request", "host", key, "waited", waited.Round(time.Millisecond))
	}
	return nil
}
