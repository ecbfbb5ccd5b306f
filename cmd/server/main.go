// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/shelfsense/internal/api"
	"github.com/tomtom215/shelfsense/internal/config"
	"github.com/tomtom215/shelfsense/internal/logging"
	"github.com/tomtom215/shelfsense/internal/supervisor"
	"github.com/tomtom215/shelfsense/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.Logging())
	logger := logging.Logger()

	logger.Info().
		Str("store_backend", cfg.Store.Backend).
		Str("addr", cfg.Server.Addr()).
		Bool("cost_enabled", cfg.Cost.Enabled).
		Msg("Starting Shelfsense")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := initStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := backend.store.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	}()

	rc, err := initRecommend(ctx, cfg, backend.store, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize recommendation service")
		return
	}
	defer rc.close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	feedbackLimiter := api.NewCustomerLimiter(cfg.API.FeedbackRate, cfg.API.FeedbackBurst)

	handlerDeps := api.HandlerDeps{
		Service:        rc.service,
		Cache:          rc.cache,
		Tracker:        rc.tracker,
		Store:          backend.store,
		Feedback:       feedbackLimiter,
		MaxBodyBytes:   cfg.API.MaxBodyBytes,
		RequestTimeout: cfg.Server.WriteTimeout,
	}
	if rc.costSink != nil {
		handlerDeps.Costs = rc.costSink
	}
	if backend.breaker != nil {
		handlerDeps.Breaker = backend.breaker
	}
	handler, err := api.NewHandler(handlerDeps)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API handler")
		return
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.API.CORSOrigins
	mwConfig.RateLimitRequests = cfg.API.RateLimit
	mwConfig.RateLimitWindow = cfg.API.RateWindow
	router := api.NewRouter(handler, mwConfig, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
	}

	tree.AddDataService(rc.tracker)
	tree.AddMaintenanceService(feedbackLimiter)
	if cfg.Janitor.Enabled {
		tree.AddMaintenanceService(services.NewJanitorService(rc.cache, rc.results, services.JanitorConfig{
			Interval:   cfg.Janitor.Interval,
			RunOnStart: true,
		}, logger))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logger.Info().Msg("Shelfsense stopped")
}
