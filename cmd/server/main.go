// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Command server runs the Placewise API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/placewise/placewise/internal/api"
	"github.com/placewise/placewise/internal/config"
	"github.com/placewise/placewise/internal/database"
	"github.com/placewise/placewise/internal/logging"
	"github.com/placewise/placewise/internal/metrics"
	"github.com/placewise/placewise/internal/recommend"
	"github.com/placewise/placewise/internal/recommend/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Placewise")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	store, err := storage.NewStore(cfg.Recommend.ModelPath)
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}

	predictor := recommend.NewPredictor()
	loadStoredModel(store, predictor)

	logger := logging.Logger()
	aggregator := recommend.NewAggregator(db, logger)
	trainer := recommend.NewTrainer(recommend.TrainerConfig{
		Rank:           cfg.Recommend.Rank,
		Epochs:         cfg.Recommend.Epochs,
		LearningRate:   cfg.Recommend.LearningRate,
		Regularization: cfg.Recommend.Regularization,
		MinSignals:     cfg.Recommend.MinSignals,
		Seed:           cfg.Recommend.Seed,
	}, aggregator, store, predictor, logger)
	engine := recommend.NewEngine(db, predictor, logger)

	if cfg.Recommend.TrainOnStartup {
		go trainOnStartup(trainer, predictor)
	}

	router := api.NewRouter(cfg,
		api.NewRecommendHandler(engine, trainer, predictor),
		api.NewHealthHandler(db, predictor),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

// loadStoredModel publishes the persisted model if one exists. Load failures
// are logged and swallowed: a missing or corrupt model just means the service
// starts with top-rated fallbacks until the next training run.
func loadStoredModel(store *storage.Store, predictor *recommend.Predictor) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var model recommend.Model
	meta, ok, err := store.Load(ctx, &model)
	if err != nil {
		logging.Warn().Err(err).Msg("Stored model unusable, starting without a model")
		return
	}
	if !ok {
		logging.Info().Msg("No stored model found, starting without a model")
		return
	}

	predictor.Publish(&model)
	metrics.RecordPublishedModel(model.SignalCount, model.TrainedAt)

	logging.Info().
		Time("saved_at", meta.SavedAt).
		Time("trained_at", model.TrainedAt).
		Int("signals", model.SignalCount).
		Msg("Stored model loaded and published")
}

// trainOnStartup runs one background training pass after boot.
func trainOnStartup(trainer *recommend.Trainer, predictor *recommend.Predictor) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	trainMetrics, err := trainer.Train(ctx)
	if err != nil {
		metrics.RecordTrainingRun(metrics.OutcomeFailed, time.Since(start))
		logging.Error().Err(err).Msg("Startup training failed")
		return
	}

	outcome := metrics.OutcomeTrained
	if trainMetrics == (recommend.Metrics{}) {
		outcome = metrics.OutcomeSkipped
	}
	metrics.RecordTrainingRun(outcome, time.Since(start))

	if outcome == metrics.OutcomeTrained {
		if m := predictor.Current(); m != nil {
			metrics.RecordPublishedModel(m.SignalCount, m.TrainedAt)
		}
	}

	logging.Info().
		Str("outcome", outcome).
		Float64("rmse", trainMetrics.RMSE).
		Float64("r_squared", trainMetrics.RSquared).
		Msg("Startup training finished")
}
