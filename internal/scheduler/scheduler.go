// Package scheduler fires a task on a cron cadence until stopped.
package scheduler

import (
	"context"
	"sync"
	"time"

	"jobboard-engine/internal/logging"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Scheduler owns one cron entry. Overlapping firings are not coordinated:
// a slow run and the next tick proceed side by side.
type Scheduler struct {
	name string
	spec string
	task Task
	log  *zap.SugaredLogger

	// RunOnStart fires the task once right after Start.
	RunOnStart bool

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	started sync.WaitGroup
}

func New(name, spec string, task Task, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{name: name, spec: spec, task: task, log: logging.OrNop(log)}
}

// Start registers the entry and begins firing. Runs receive a context that
// is cancelled by Stop or when ctx ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.Newf("scheduler %s already started", s.name)
	}

	cl := cronLogger{s.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	runCtx, cancel := context.WithCancel(ctx)
	id, err := c.AddFunc(s.spec, func() { s.run(runCtx) })
	if err != nil {
		cancel()
		return errors.Wrapf(err, "schedule %s %q", s.name, s.spec)
	}

	s.cron, s.cancel = c, cancel
	c.Start()
	s.log.Infow("scheduled", "task", s.name, "cron", s.spec, "next", c.Entry(id).Schedule.Next(time.Now()).Format(time.RFC3339))

	if s.RunOnStart {
		s.started.Add(1)
		go func() {
			defer s.started.Done()
			s.run(runCtx)
		}()
	}

	go func() {
		<-runCtx.Done()
		s.stop(c)
	}()
	return nil
}

// Stop halts new firings, cancels in-flight runs and returns a context that
// is done once they have returned. Safe to call more than once.
func (s *Scheduler) Stop() context.Context {
	return s.stop(nil)
}

// stop halts only the given cron instance when want is non-nil.
func (s *Scheduler) stop(want *cron.Cron) context.Context {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	if want != nil && c != want {
		c = nil
	}
	if c != nil {
		s.cron, s.cancel = nil, nil
	}
	s.mu.Unlock()

	if c == nil {
		done, cancelDone := context.WithCancel(context.Background())
		cancelDone()
		return done
	}

	cancel()
	cronDone := c.Stop()

	done, markDone := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.started.Wait()
		markDone()
	}()
	return done
}

func (s *Scheduler) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("task panic", "task", s.name, "panic", r)
		}
	}()

	start := time.Now()
	s.log.Infow("task firing", "task", s.name)
	if err := s.task(ctx); err != nil {
		s.log.Errorw("task failed", "task", s.name, "err", err, "took", time.Since(start).Round(time.Millisecond))
		return
	}
	s.log.Infow("task done", "task", s.name, "took", time.Since(start).Round(time.Millisecond))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "err", err)...)
}
