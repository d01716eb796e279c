// Package events fans engine notifications out to SSE subscribers.
package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing            = "ping"
	TypeJobCreated      = "job_created"
	TypeJobDeleted      = "job_deleted"
	TypeIngestCompleted = "ingest_completed"
)

const version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Make builds the wire form of an event; data is marshalled as-is.
func Make(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   version,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}

// IngestResult is the payload of ingest_completed.
type IngestResult struct {
	Summary  json.RawMessage `json:"summary"`
	Inserted int             `json:"inserted"`
	Error    string          `json:"error,omitempty"`
}
