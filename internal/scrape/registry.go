package scrape

import (
	"time"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/logging"
	"jobboard-engine/internal/scrape/remoteco"
	"jobboard-engine/internal/scrape/remoteok"
	"jobboard-engine/internal/scrape/types"
	"jobboard-engine/internal/scrape/util"
	"jobboard-engine/internal/scrape/weworkremotely"

	"go.uber.org/zap"
)

// NewClient builds the shared HTTP client from the fetch section.
func NewClient(cfg config.Config, log *zap.SugaredLogger) *util.Client {
	return util.NewClient(
		cfg.Fetch.UserAgent,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		util.NewHostLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst, log),
	)
}

// BuildFetchers returns the enabled adapters in fixed order: remoteok,
// weworkremotely, remoteco. Summary and aggregate order follow it.
func BuildFetchers(cfg config.Config, client *util.Client, now func() time.Time, log *zap.SugaredLogger) []types.Fetcher {
	var fetchers []types.Fetcher
	log = logging.OrNop(log)

	if cfg.Sources.RemoteOK.Enabled {
		fetchers = append(fetchers, remoteok.New(
			remoteok.Config{URL: cfg.Sources.RemoteOK.URL}, client, now, log.Named("remoteok")))
	}
	if cfg.Sources.WeWorkRemotely.Enabled {
		fetchers = append(fetchers, weworkremotely.New(
			weworkremotely.Config{URL: cfg.Sources.WeWorkRemotely.URL}, client, now, log.Named("weworkremotely")))
	}
	if rc := cfg.Sources.RemoteCo; rc.Enabled {
		fetchers = append(fetchers, remoteco.New(
			remoteco.Config{BaseURL: rc.BaseURL, Categories: rc.Categories}, client, now, log.Named("remoteco")))
	}
	return fetchers
}
