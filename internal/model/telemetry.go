package model

import (
	"time"

	"github.com/google/uuid"
)

// TelemetryEvent is a captured failure forwarded to the telemetry sink.
type TelemetryEvent struct {
	ID         uuid.UUID         `json:"id"`
	Component  string            `json:"component"`
	Error      string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
