package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays JOBBOARD_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_STORE_DRIVER")); v != "" {
		cfg.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_PG_DSN")); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_SCHEDULE")); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_LOG_JSON")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.App.LogJSON = b
		}
	}
}
