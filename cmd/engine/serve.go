package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/httpapi"
	"jobboard-engine/internal/scheduler"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run ingestion on the configured schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:<app.port>)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	log := rt.log
	defer func() { _ = log.Sync() }()

	// one engine per data dir owns the schedule
	lock := flock.New(filepath.Join(rt.cfg.App.DataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "acquire engine lock")
	}
	if !locked {
		return errors.Newf("another engine is already serving %s", rt.cfg.App.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	js, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer js.Close()

	hub := events.NewHub()
	engine, runner := rt.pipeline(js, hub)

	sched := scheduler.New("ingest", rt.cfg.Schedule.Cron, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}, log.Named("scheduler"))
	sched.RunOnStart = rt.cfg.Schedule.RunOnStart
	if err := sched.Start(ctx); err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", rt.cfg.App.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		sched.Stop()
		return errors.Wrapf(err, "listen %s", addr)
	}

	srv := &http.Server{
		Handler: httpapi.Handler(httpapi.Deps{
			Store:      js,
			Engine:     engine,
			Runner:     runner,
			Hub:        hub,
			Log:        log.Named("http"),
			Config:     rt.cfg,
			ConfigPath: rt.cfgPath,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("engine listening", "addr", "http://"+ln.Addr().String(), "schedule", rt.cfg.Schedule.Cron)
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		log.Infow("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("http server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "err", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warnw("ingestion still running at shutdown")
	}
	return nil
}
