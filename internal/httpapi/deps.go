package httpapi

import (
	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/store"

	"go.uber.org/zap"
)

type Deps struct {
	Store  store.JobStore
	Engine *ingest.Engine
	Runner *ingest.Runner
	Hub    *events.Hub
	Log    *zap.SugaredLogger

	// Effective config as loaded at startup; served read-only.
	Config     config.Config
	ConfigPath string
}
