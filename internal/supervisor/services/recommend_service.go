// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// RecommendEngine is the part of the recommendation engine the scheduler drives.
type RecommendEngine interface {
	// LoadModels restores persisted model snapshots.
	LoadModels(ctx context.Context) error

	// NeedsTraining reports whether the models are stale and why.
	NeedsTraining(ctx context.Context) (bool, string, error)

	// Train runs one training pass.
	Train(ctx context.Context, opts recommend.TrainOptions) (*recommend.TrainResult, error)
}

var _ RecommendEngine = (*recommend.Engine)(nil)

// RecommendServiceConfig configures the training scheduler.
type RecommendServiceConfig struct {
	// TrainOnStartup trains at startup when no fresh snapshot was restored.
	TrainOnStartup bool

	// CheckInterval is how often staleness is checked. Default: 5m
	CheckInterval time.Duration

	// TrainTimeout bounds a single training run. Default: 30m
	TrainTimeout time.Duration
}

// RecommendService restores stored models on start and retrains them in
// the background whenever the engine reports them stale.
type RecommendService struct {
	engine RecommendEngine
	config RecommendServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRecommendService creates the training scheduler service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine RecommendEngine, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Minute
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &RecommendService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("check_interval", s.config.CheckInterval).
		Msg("recommendation service starting")

	if err := s.engine.LoadModels(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("restoring model snapshots failed, models start untrained")
	}

	if s.config.TrainOnStartup {
		s.trainIfNeeded(ctx)
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.trainIfNeeded(ctx)
		}
	}
}

func (s *RecommendService) trainIfNeeded(ctx context.Context) {
	needed, reason, err := s.engine.NeedsTraining(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("staleness check failed")
		return
	}
	if !needed {
		return
	}

	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	s.logger.Info().Str("reason", reason).Msg("scheduled training triggered")
	result, err := s.engine.Train(trainCtx, recommend.TrainOptions{Scheduled: true})
	switch {
	case errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Info().Msg("not enough interactions yet, training skipped")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Msg("training already running")
	case err != nil:
		s.logger.Warn().Err(err).Msg("scheduled training failed")
	default:
		s.logger.Info().
			Strs("trained", result.Trained).
			Int("model_version", result.ModelVersion).
			Int64("duration_ms", result.DurationMS).
			Msg("scheduled training complete")
	}
}

// String implements fmt.Stringer for suture logging.
func (s *RecommendService) String() string {
	return s.name
}
