package httpapi

import (
	"net/http"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/logging"
)

// NewMux registers every route; Handler adds the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	log := logging.OrNop(d.Log)
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{Store: d.Store, Engine: d.Engine, Hub: d.Hub, Log: log}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: jh.Create,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.GetByPath,    // expects /jobs/{id}
		http.MethodDelete: jh.DeleteByPath, // expects /jobs/{id}
	}))

	// Scrape
	sch := ScrapeHandler{Runner: d.Runner}
	mux.HandleFunc("/jobs/scrape", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Run,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))

	// Config
	ch := ConfigHandler{Config: d.Config, UserCfgPath: d.ConfigPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}

func Handler(d Deps) http.Handler {
	log := logging.OrNop(d.Log)
	return Chain(NewMux(d), RequestID, Recover(log), AccessLog(log), Cors)
}
