package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kbtrainer/internal/model"
)

type TelemetryRepository struct {
	pool *pgxpool.Pool
}

func NewTelemetryRepository(pool *pgxpool.Pool) *TelemetryRepository {
	return &TelemetryRepository{pool: pool}
}

// BulkInsert writes a batch of events with a single UNNEST statement.
// Events already stored (same id) are ignored so requeued batches are safe.
func (r *TelemetryRepository) BulkInsert(ctx context.Context, events []*model.TelemetryEvent) error {
	n := len(events)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	components := make([]string, 0, n)
	messages := make([]string, 0, n)
	fields := make([][]byte, 0, n)
	occurred := make([]time.Time, 0, n)

	for _, e := range events {
		fb, _ := json.Marshal(e.Fields)
		ids = append(ids, e.ID)
		components = append(components, e.Component)
		messages = append(messages, e.Error)
		fields = append(fields, fb)
		occurred = append(occurred, e.OccurredAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO telemetry_events (id, component, error, fields, occurred_at)
		SELECT u.id, u.component, u.error, u.fields, u.occurred_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::jsonb[],
			$5::timestamptz[]
		) AS u (id, component, error, fields, occurred_at)
		ON CONFLICT (id) DO NOTHING
	`, ids, components, messages, fields, occurred)
	return err
}

// Insert writes a single event; used as the fallback when a batch fails.
func (r *TelemetryRepository) Insert(ctx context.Context, e *model.TelemetryEvent) error {
	fb, _ := json.Marshal(e.Fields)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO telemetry_events (id, component, error, fields, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Component, e.Error, fb, e.OccurredAt)
	return err
}
