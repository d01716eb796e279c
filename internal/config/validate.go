package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg along with any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.Trim(strings.TrimSpace(x), "/")
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	out.Schedule.Cron = strings.TrimSpace(out.Schedule.Cron)
	out.Sources.RemoteCo.Categories = trimList(out.Sources.RemoteCo.Categories)
	out.Sources.RemoteCo.BaseURL = strings.TrimRight(strings.TrimSpace(out.Sources.RemoteCo.BaseURL), "/")
	if strings.TrimSpace(out.Fetch.UserAgent) == "" {
		out.Fetch.UserAgent = DefaultUserAgent
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	switch out.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(out.Store.PostgresDSN) == "" {
			res.addErr("store.postgres_dsn is required when store.driver=postgres")
		}
	default:
		res.addErr("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, out.Store.Driver)
	}

	if out.Schedule.Cron == "" {
		res.addErr("schedule.cron is required")
	} else if _, err := cron.ParseStandard(out.Schedule.Cron); err != nil {
		res.addErr("schedule.cron %q: %v", out.Schedule.Cron, err)
	}

	// every fetch must be bounded
	if out.Fetch.TimeoutSeconds <= 0 {
		res.addErr("fetch.timeout_seconds must be > 0")
	}
	if out.Fetch.SourceTimeoutSeconds <= 0 {
		res.addErr("fetch.source_timeout_seconds must be > 0")
	} else if out.Fetch.SourceTimeoutSeconds < out.Fetch.TimeoutSeconds {
		res.addWarn("fetch.source_timeout_seconds (%d) is shorter than one request timeout (%d).",
			out.Fetch.SourceTimeoutSeconds, out.Fetch.TimeoutSeconds)
	}
	if out.Fetch.RequestsPerSecond <= 0 {
		res.addErr("fetch.requests_per_second must be > 0")
	}
	if out.Fetch.Burst <= 0 {
		res.addErr("fetch.burst must be > 0")
	}

	checkURL := func(name, raw string) {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if out.Sources.RemoteOK.Enabled {
		checkURL("sources.remoteok.url", out.Sources.RemoteOK.URL)
	}
	if out.Sources.WeWorkRemotely.Enabled {
		checkURL("sources.weworkremotely.url", out.Sources.WeWorkRemotely.URL)
	}
	if out.Sources.RemoteCo.Enabled {
		checkURL("sources.remoteco.base_url", out.Sources.RemoteCo.BaseURL)
		if len(out.Sources.RemoteCo.Categories) == 0 {
			res.addErr("sources.remoteco.categories must have at least 1 entry when enabled")
		}
	}

	if !out.Sources.RemoteOK.Enabled && !out.Sources.WeWorkRemotely.Enabled && !out.Sources.RemoteCo.Enabled {
		res.addWarn("no sources enabled; ingestion runs will find nothing.")
	}

	return out, res
}
