package httpapi

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every JSON response: {"data": ..., "statusCode": n, "success": bool}.
type Envelope struct {
	Data       any  `json:"data"`
	StatusCode int  `json:"statusCode"`
	Success    bool `json:"success"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Data:       data,
		StatusCode: status,
		Success:    status >= 200 && status < 300,
	})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, APIError{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	})
}

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
