package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
)

const (
	TelemetryBatchSize    = 50
	TelemetryBatchTimeout = 2 * time.Second
	TelemetryPollTimeout  = 1 * time.Second
)

// EventSink persists telemetry events. repository.TelemetryRepository is the
// production implementation.
type EventSink interface {
	BulkInsert(ctx context.Context, events []*model.TelemetryEvent) error
	Insert(ctx context.Context, e *model.TelemetryEvent) error
}

// TelemetryWorker drains the telemetry queue into Postgres in batches.
type TelemetryWorker struct {
	sink  EventSink
	rdb   *redis.Client
	queue string
	log   zerolog.Logger
}

func NewTelemetryWorker(sink EventSink, rdb *redis.Client, queue string, log zerolog.Logger) *TelemetryWorker {
	return &TelemetryWorker{
		sink:  sink,
		rdb:   rdb,
		queue: queue,
		log:   log.With().Str("component", "telemetry_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *TelemetryWorker) Start(ctx context.Context) {
	w.log.Info().Str("queue", w.queue).Msg("TelemetryWorker started")

	batch := make([]*model.TelemetryEvent, 0, TelemetryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= TelemetryBatchSize || time.Since(lastFlush) >= TelemetryBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested, flushing remaining batch")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, TelemetryPollTimeout, w.queue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var e model.TelemetryEvent
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid telemetry payload, dropped")
				continue
			}
			batch = append(batch, &e)
		}
	}
}

// flushSafe writes the batch, falling back to one insert per event. Events
// that still fail go back on the queue.
func (w *TelemetryWorker) flushSafe(ctx context.Context, batch []*model.TelemetryEvent) {
	if len(batch) == 0 {
		return
	}

	err := w.sink.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Telemetry batch stored")
		return
	}
	w.log.Warn().Err(err).Msg("Bulk telemetry insert failed, using fallback")

	for _, e := range batch {
		if err := w.sink.Insert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("event_id", e.ID.String()).Msg("Insert failed, requeueing")
			w.requeue(ctx, e)
		}
	}
}

func (w *TelemetryWorker) requeue(ctx context.Context, e *model.TelemetryEvent) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := w.rdb.RPush(ctx, w.queue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("event_id", e.ID.String()).Msg("Requeue failed, event lost")
	}
}
