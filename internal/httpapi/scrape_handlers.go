package httpapi

import (
	"context"
	"net/http"

	"jobboard-engine/internal/ingest"
)

type ScrapeHandler struct {
	Runner *ingest.Runner
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runner.Status())
}

type runFailure struct {
	APIError
	Summary ingest.Summary `json:"summary"`
}

// Run executes one ingestion synchronously and answers with its summary.
// Failed sources show up as zero counts; only store failures are errors.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	// a client hanging up does not abort a run half way through the store writes
	ctx := context.WithoutCancel(r.Context())

	sum, err := h.Runner.Run(ctx)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, runFailure{
			APIError: APIError{
				Code:      "ingest_failed",
				Message:   err.Error(),
				RequestID: RequestIDFrom(r.Context()),
			},
			Summary: sum,
		})
		return
	}
	WriteJSON(w, http.StatusOK, sum)
}
