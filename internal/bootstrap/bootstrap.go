// Package bootstrap builds the process-wide question store and its
// supporting connections from configuration. Both the server and the import
// CLI start from here.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/database"
	"github.com/stemsi/kbtrainer/internal/storage"
	"github.com/stemsi/kbtrainer/internal/store"
	"github.com/stemsi/kbtrainer/internal/telemetry"
)

// Runtime owns everything that lives for the whole process.
type Runtime struct {
	Clients  *database.Clients
	Reporter telemetry.Reporter
	Store    *store.QuestionStore
}

// Open connects the configured backends, opens storage and loads the store.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	clients, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect backends: %w", err)
	}

	st, err := storage.Open(cfg, storage.Backends{Redis: clients.Redis, Postgres: clients.Postgres}, log)
	if err != nil {
		clients.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reporter := NewReporter(cfg, clients, log)

	qs := store.New(st, reporter, log,
		store.WithExamSize(cfg.ExamQuestionCount),
		store.WithPassingScore(cfg.PassingScore),
		store.WithClearProgressOnImport(cfg.ClearProgressOnImport),
	)
	qs.Load(ctx)

	log.Info().
		Int("questions", qs.QuestionCount()).
		Str("storage", cfg.StorageDriver).
		Str("telemetry", cfg.TelemetryDriver).
		Msg("Question store loaded")

	return &Runtime{Clients: clients, Reporter: reporter, Store: qs}, nil
}

// NewReporter always logs; with the redis driver events are also queued for
// the telemetry worker.
func NewReporter(cfg *config.Config, clients *database.Clients, log zerolog.Logger) telemetry.Reporter {
	logReporter := telemetry.NewLogReporter(log)
	if cfg.TelemetryDriver == config.TelemetryDriverRedis && clients.Redis != nil {
		return telemetry.Multi{
			logReporter,
			telemetry.NewQueueReporter(clients.Redis, config.WorkerKey.TelemetryQueue, log),
		}
	}
	return logReporter
}

// Close releases the backend connections.
func (r *Runtime) Close() {
	r.Clients.Close()
}
