// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

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

	"github.com/tomtom215/mentormatch/internal/api"
	"github.com/tomtom215/mentormatch/internal/config"
	"github.com/tomtom215/mentormatch/internal/logging"
	"github.com/tomtom215/mentormatch/internal/middleware"
	"github.com/tomtom215/mentormatch/internal/supervisor"
	"github.com/tomtom215/mentormatch/internal/supervisor/services"
)

const (
	shutdownTimeout   = 10 * time.Second
	perfSampleWindow  = 1000
	storageGCInterval = 10 * time.Minute
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("version", api.Version).
		Str("storage", cfg.Storage.Path).
		Bool("in_memory", cfg.Storage.InMemory).
		Bool("neo4j", cfg.Neo4j.Enabled).
		Msg("Starting Mentormatch with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initRecommend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	defer components.Close(context.Background())

	// sutureslog needs a *slog.Logger; the adapter forwards to zerolog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Security.RateLimitDisabled {
		logger.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
	}

	perfMon := middleware.NewPerformanceMonitor(perfSampleWindow, 0, logger)
	opts := append(components.HandlerOptions(), api.WithPerformanceMonitor(perfMon))
	handler := api.NewHandler(components.Engine, opts...)

	chiMw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMw)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: max(cfg.Server.Timeout, components.Config.Training.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	tree.AddTrainingService(services.NewRecommendService(components.Engine, services.RecommendServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		CheckInterval:  cfg.Recommend.CheckInterval,
		TrainTimeout:   components.Config.Training.Timeout,
	}, logger))

	if !cfg.Storage.InMemory {
		tree.AddTrainingService(services.NewStorageGCService(components.DB, storageGCInterval, logger))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, addr, shutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logger.Info().Str("addr", addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain remaining errors until the tree has stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logger.Info().Msg("Application stopped gracefully")
}
