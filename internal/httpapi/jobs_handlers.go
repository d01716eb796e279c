package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/store"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type JobsHandler struct {
	Store  store.JobStore
	Engine *ingest.Engine
	Hub    *events.Hub
	Log    *zap.SugaredLogger
}

type jobList struct {
	Jobs   []domain.Record `json:"jobs"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.ListOpts{}
	var err error
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			return
		}
	}
	if v := q.Get("source"); v != "" {
		src, ok := domain.ParseSource(v)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, "invalid_source", "unknown source "+strconv.Quote(v))
			return
		}
		opts.Source = src
	}

	recs, total, err := h.Store.List(r.Context(), opts)
	if err != nil {
		h.Log.Errorw("list jobs", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if opts.Limit == 0 {
		opts.Limit = store.DefaultListLimit
	}
	if opts.Limit > store.MaxListLimit {
		opts.Limit = store.MaxListLimit
	}
	WriteJSON(w, http.StatusOK, jobList{Jobs: recs, Total: total, Limit: opts.Limit, Offset: opts.Offset})
}

// Create goes through the same Engine as ingestion, so manual entries obey
// the same dedup key.
func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p domain.Posting
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&p); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	src, ok := domain.ParseSource(string(p.Source))
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_source", "unknown source "+strconv.Quote(string(p.Source)))
		return
	}
	p.Source = src

	outcome, rec, err := h.Engine.Upsert(r.Context(), p)
	switch {
	case outcome == ingest.Invalid:
		WriteError(w, r, http.StatusBadRequest, "invalid_posting", err.Error())
	case err != nil:
		h.Log.Errorw("create job", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
	case outcome == ingest.Duplicate:
		WriteError(w, r, http.StatusConflict, "duplicate", "a job with this title and company already exists for that day")
	default:
		h.Hub.Publish(events.Make(RequestIDFrom(r.Context()), events.TypeJobCreated, map[string]any{"id": rec.ID}))
		WriteJSON(w, http.StatusCreated, rec)
	}
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	rec, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	err := h.Store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	h.Hub.Publish(events.Make(RequestIDFrom(r.Context()), events.TypeJobDeleted, map[string]any{"id": id}))
	WriteJSON(w, http.StatusOK, map[string]any{"id": id})
}

// jobID reads {id} from /jobs/{id}.
func jobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return "", false
	}
	return id, true
}
