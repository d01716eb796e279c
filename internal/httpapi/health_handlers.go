package httpapi

import (
	"net/http"

	"jobboard-engine/internal/events"
)

type HealthHandler struct {
	Hub *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"subscribers": h.Hub.Subscribers(),
	})
}
