package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/bootstrap"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/handler"
	"github.com/stemsi/kbtrainer/internal/logger"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/repository"
	"github.com/stemsi/kbtrainer/internal/router"
	"github.com/stemsi/kbtrainer/internal/service"
	"github.com/stemsi/kbtrainer/internal/validator"
	"github.com/stemsi/kbtrainer/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting KB trainer")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage + Question Store ──────────────────────────────────────
	rt, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer rt.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	examService := service.NewExamSessionService(rt.Store, cfg.ExamTimeLimit, cfg.CountdownInterval, log)
	exerciseService := service.NewExerciseService(rt.Store, cfg.DefaultExerciseSize, nil, log)
	studyService := service.NewStudyService(rt.Store, log)
	importService := service.NewImportService(rt.Store, rt.Reporter, log)
	overviewService := service.NewOverviewService(rt.Store, examService)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Overview: handler.NewOverviewHandler(overviewService),
		Question: handler.NewQuestionHandler(importService, rt.Store, cfg.MaxUploadBytes, log),
		Exam:     handler.NewExamHandler(examService),
		Exercise: handler.NewExerciseHandler(exerciseService),
		Study:    handler.NewStudyHandler(studyService),
		WS:       handler.NewWSHandler(examService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	if rt.Clients.Redis != nil && rt.Clients.Postgres != nil && cfg.TelemetryDriver == config.TelemetryDriverRedis {
		telemetryWorker := worker.NewTelemetryWorker(
			repository.NewTelemetryRepository(rt.Clients.Postgres),
			rt.Clients.Redis,
			config.WorkerKey.TelemetryQueue,
			log,
		)
		go func() {
			defer close(workerDone)
			telemetryWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ─── Resume A Running Exam ─────────────────────────────────────────
	// A restart mid-exam reattaches the countdown so expiry still completes it.
	if examService.State() == model.ExamStateInProgress {
		if _, err := examService.Begin(ctx); err != nil {
			log.Warn().Err(err).Msg("Exam resume failed")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the exam countdown; the deadline lives in storage.
	examService.Shutdown()

	// 3. Stop background workers and wait for the last batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Telemetry worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
