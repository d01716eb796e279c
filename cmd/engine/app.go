package main

import (
	"context"
	"os"
	"strings"
	"time"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/scrape"
	"jobboard-engine/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything both commands need before they diverge.
type app struct {
	cfg     config.Config
	cfgPath string
	log     *zap.SugaredLogger
}

func loadRuntime(cmd *cobra.Command) (*app, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = strings.TrimSpace(os.Getenv("JOBBOARD_DATA_DIR"))
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dataDir)
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return nil, errors.Wrap(err, "config bootstrap")
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(&cfg)
	if cmd.Flags().Changed("data-dir") {
		cfg.App.DataDir = dataDir
	}

	cfg, vr := config.NormalizeAndValidate(cfg)

	log, err := logging.New(cfg.App.LogJSON, cfg.App.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	for _, w := range vr.Warnings {
		log.Warnw("config warning", "path", cfgPath, "warning", w)
	}
	if !vr.OK() {
		return nil, errors.Newf("invalid config %s:\n- %s", cfgPath, strings.Join(vr.Errors, "\n- "))
	}

	log.Infow("config loaded", "path", cfgPath, "data_dir", cfg.App.DataDir, "store", cfg.Store.Driver)
	return &app{cfg: cfg, cfgPath: cfgPath, log: log}, nil
}

// pipeline wires adapters, engine and runner over an open store. hub may be nil.
func (rt *app) pipeline(js store.JobStore, hub *events.Hub) (*ingest.Engine, *ingest.Runner) {
	cfg := rt.cfg
	scrapeLog := rt.log.Named("scrape")
	fetchers := scrape.BuildFetchers(cfg, scrape.NewClient(cfg, scrapeLog), time.Now, scrapeLog)

	engine := ingest.NewEngine(js)
	orch := &ingest.Orchestrator{
		Fetchers:      fetchers,
		Engine:        engine,
		SourceTimeout: time.Duration(cfg.Fetch.SourceTimeoutSeconds) * time.Second,
		Concurrent:    cfg.Ingest.Concurrent,
		InRunDedup:    cfg.Ingest.InRunDedup,
		Log:           rt.log.Named("ingest"),
	}
	runner := ingest.NewRunner(orch, rt.log.Named("ingest"))

	if hub != nil {
		orch.OnInsert = func(rec domain.Record) {
			hub.Emit(events.TypeJobCreated, map[string]any{"id": rec.ID, "source": rec.Source})
		}
		runner.OnComplete = func(sum ingest.Summary, err error) {
			res := events.IngestResult{Inserted: sum.Inserted}
			res.Summary, _ = sum.MarshalJSON()
			if err != nil {
				res.Error = err.Error()
			}
			hub.Emit(events.TypeIngestCompleted, res)
		}
	}
	return engine, runner
}

func (rt *app) openStore(ctx context.Context) (store.JobStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return store.Open(ctx, rt.cfg)
}
