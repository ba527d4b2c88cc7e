// Package telemetry forwards caught failures to an error collector without
// ever surfacing them to the caller.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
)

// Reporter captures an error raised inside component. Implementations must
// not block for long and must never panic.
type Reporter interface {
	Capture(ctx context.Context, component string, err error, fields map[string]string)
}

// NewEvent builds the event shape shared by every reporter.
func NewEvent(component string, err error, fields map[string]string) *model.TelemetryEvent {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &model.TelemetryEvent{
		ID:         uuid.New(),
		Component:  component,
		Error:      msg,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	}
}

// LogReporter writes captured errors to the structured log.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log.With().Str("component", "telemetry").Logger()}
}

func (r *LogReporter) Capture(_ context.Context, component string, err error, fields map[string]string) {
	ev := r.log.Error().Err(err).Str("source", component)
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg("Captured error")
}

// QueueReporter pushes events onto a Redis list drained by worker.TelemetryWorker.
type QueueReporter struct {
	rdb   *redis.Client
	queue string
	log   zerolog.Logger
}

func NewQueueReporter(rdb *redis.Client, queue string, log zerolog.Logger) *QueueReporter {
	return &QueueReporter{
		rdb:   rdb,
		queue: queue,
		log:   log.With().Str("component", "telemetry_queue").Logger(),
	}
}

func (r *QueueReporter) Capture(ctx context.Context, component string, err error, fields map[string]string) {
	raw, mErr := json.Marshal(NewEvent(component, err, fields))
	if mErr != nil {
		r.log.Error().Err(mErr).Msg("Encode telemetry event")
		return
	}
	if pErr := r.rdb.RPush(ctx, r.queue, raw).Err(); pErr != nil {
		r.log.Warn().Err(pErr).AnErr("captured", err).Msg("Telemetry queue unavailable")
	}
}

// Multi fans a capture out to several reporters.
type Multi []Reporter

func (m Multi) Capture(ctx context.Context, component string, err error, fields map[string]string) {
	for _, r := range m {
		r.Capture(ctx, component, err, fields)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Capture(context.Context, string, error, map[string]string) {}
