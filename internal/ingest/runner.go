package ingest

import (
	"context"
	"sync"
	"time"

	"jobboard-engine/internal/logging"

	"go.uber.org/zap"
)

// Status is the last-run view shared by the scheduler and the manual trigger.
type Status struct {
	LastRunAt    string   `json:"last_run_at"`
	LastOkAt     string   `json:"last_ok_at"`
	LastError    string   `json:"last_error"`
	LastSummary  *Summary `json:"last_summary"`
	LastInserted int      `json:"last_inserted"`
	Running      bool     `json:"running"`
}

// Runner is the single entry point both triggers call. Runs are not
// serialized; overlapping runs rely on the Engine for correctness.
type Runner struct {
	orch *Orchestrator
	log  *zap.SugaredLogger
	now  func() time.Time

	// OnComplete, if set, observes every finished run.
	OnComplete func(Summary, error)

	mu     sync.Mutex
	active int
	status Status
}

func NewRunner(o *Orchestrator, log *zap.SugaredLogger) *Runner {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{orch: o, log: logging.OrNop(log), now: now}
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	r.active++
	r.status.Running = true
	r.status.LastRunAt = r.now().UTC().Format(time.RFC3339)
	r.mu.Unlock()

	sum, err := r.orch.Run(ctx)

	r.mu.Lock()
	r.active--
	r.status.Running = r.active > 0
	r.status.LastSummary = &sum
	r.status.LastInserted = sum.Inserted
	if err != nil {
		r.status.LastError = err.Error()
	} else {
		r.status.LastError = ""
		r.status.LastOkAt = r.now().UTC().Format(time.RFC3339)
	}
	r.mu.Unlock()

	if r.OnComplete != nil {
		r.OnComplete(sum, err)
	}
	return sum, err
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.status
	if st.LastSummary != nil {
		cp := *st.LastSummary
		st.LastSummary = &cp
	}
	return st
}
