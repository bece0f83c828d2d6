// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Command server runs the ReelRank HTTP service: it loads configuration,
// seeds the demo dataset when none exists, trains the recommendation engine
// once, and serves the API until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelrank/reelrank/internal/agent"
	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/middleware"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
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
	logger := logging.Logger()

	dataStore := store.NewCSVStore(cfg.Data.CatalogPath, cfg.Data.InteractionsPath)
	if !dataStore.Exists() {
		if !cfg.Data.SeedIfMissing {
			return fmt.Errorf("dataset missing at %s / %s and seeding is disabled",
				cfg.Data.CatalogPath, cfg.Data.InteractionsPath)
		}
		logger.Info().Msg("dataset missing, generating synthetic data")
		opts := store.DefaultSeedOptions()
		opts.Seed = cfg.Engine.Seed
		if err := dataStore.Seed(opts); err != nil {
			return fmt.Errorf("seed dataset: %w", err)
		}
	}

	engineCfg := recommend.Config{
		WeightContent:   cfg.Engine.WeightContent,
		WeightCollab:    cfg.Engine.WeightCollab,
		ContentRank:     cfg.Engine.ContentRank,
		CollabRank:      cfg.Engine.CollabRank,
		LikedThreshold:  cfg.Engine.LikedThreshold,
		EvalSampleUsers: cfg.Engine.EvalSampleUsers,
		DefaultK:        cfg.Engine.DefaultK,
		Seed:            cfg.Engine.Seed,
	}
	engine, err := recommend.NewEngine(engineCfg, dataStore, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	evaluator := recommend.NewEvaluator(engine, cfg.Engine.Seed)

	var ollama *agent.OllamaClient
	if cfg.Agent.OllamaURL != "" {
		ollama = agent.NewOllamaClient(cfg.Agent.OllamaURL, cfg.Agent.Model,
			&http.Client{Timeout: cfg.Agent.Timeout})
		logger.Info().Str("url", cfg.Agent.OllamaURL).Str("model", cfg.Agent.Model).
			Msg("llm routing enabled")
	} else {
		logger.Info().Msg("no llm configured, agent uses keyword routing only")
	}
	ag := agent.New(engine, ollama, cfg.Engine.WeightContent, cfg.Engine.WeightCollab, logger)

	handler := api.NewHandler(engine, evaluator, ag, cfg.Engine.WeightContent, cfg.Engine.WeightCollab)

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		defer limiter.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
