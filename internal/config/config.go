// internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type Source struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		LogJSON  bool   `yaml:"log_json" json:"log_json"`
		LogLevel string `yaml:"log_level" json:"log_level"`
	} `yaml:"app" json:"app"`

	Store struct {
		Driver           string `yaml:"driver" json:"driver"`
		SQLitePath       string `yaml:"sqlite_path" json:"sqlite_path"`
		PostgresDSN      string `yaml:"postgres_dsn" json:"-"`
		PostgresMaxConns int    `yaml:"postgres_max_conns" json:"postgres_max_conns"`
	} `yaml:"store" json:"store"`

	Schedule struct {
		Cron       string `yaml:"cron" json:"cron"`
		RunOnStart bool   `yaml:"run_on_start" json:"run_on_start"`
	} `yaml:"schedule" json:"schedule"`

	Fetch struct {
		UserAgent            string  `yaml:"user_agent" json:"user_agent"`
		TimeoutSeconds       int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		SourceTimeoutSeconds int     `yaml:"source_timeout_seconds" json:"source_timeout_seconds"`
		RequestsPerSecond    float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst                int     `yaml:"burst" json:"burst"`
	} `yaml:"fetch" json:"fetch"`

	Ingest struct {
		Concurrent bool `yaml:"concurrent" json:"concurrent"`
		InRunDedup bool `yaml:"in_run_dedup" json:"in_run_dedup"`
	} `yaml:"ingest" json:"ingest"`

	Sources struct {
		RemoteOK       Source `yaml:"remoteok" json:"remoteok"`
		WeWorkRemotely Source `yaml:"weworkremotely" json:"weworkremotely"`
		RemoteCo       struct {
			Enabled    bool     `yaml:"enabled" json:"enabled"`
			BaseURL    string   `yaml:"base_url" json:"base_url"`
			Categories []string `yaml:"categories" json:"categories"`
		} `yaml:"remoteco" json:"remoteco"`
	} `yaml:"sources" json:"sources"`
}

// Default is the configuration written on first start.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"

	cfg.Store.Driver = DriverSQLite
	cfg.Store.PostgresMaxConns = 4

	// daily at midnight
	cfg.Schedule.Cron = "0 0 * * *"

	cfg.Fetch.UserAgent = DefaultUserAgent
	cfg.Fetch.TimeoutSeconds = 20
	cfg.Fetch.SourceTimeoutSeconds = 120
	cfg.Fetch.RequestsPerSecond = 1
	cfg.Fetch.Burst = 2

	cfg.Ingest.Concurrent = true
	cfg.Ingest.InRunDedup = true

	cfg.Sources.RemoteOK = Source{Enabled: true, URL: "https://remoteok.com/"}
	cfg.Sources.WeWorkRemotely = Source{Enabled: true, URL: "https://weworkremotely.com/remote-jobs"}
	cfg.Sources.RemoteCo.Enabled = true
	cfg.Sources.RemoteCo.BaseURL = "https://remote.co"
	cfg.Sources.RemoteCo.Categories = []string{"project-manager", "developer"}
	return cfg
}

// Load reads the YAML file on top of Default, so omitted keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// SQLitePath resolves the database file, defaulting into the data dir.
func (c Config) SQLitePath() string {
	if c.Store.SQLitePath != "" {
		return c.Store.SQLitePath
	}
	return filepath.Join(c.App.DataDir, "jobboard.db")
}
