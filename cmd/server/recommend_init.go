// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/api"
	"github.com/tomtom215/mentormatch/internal/config"
	"github.com/tomtom215/mentormatch/internal/graphsink"
	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/algorithms"
	"github.com/tomtom215/mentormatch/internal/recommend/ensemble"
	"github.com/tomtom215/mentormatch/internal/recommend/evaluation"
	"github.com/tomtom215/mentormatch/internal/recommend/graph"
	"github.com/tomtom215/mentormatch/internal/recommend/storage"
)

// errStorageClosed is reported by the storage health check after shutdown.
var errStorageClosed = errors.New("badger store is closed")

// RecommendComponents holds the engine and everything it owns.
type RecommendComponents struct {
	Engine       *recommend.Engine
	Config       *recommend.Config
	DB           *badger.DB
	Interactions *storage.InteractionStore
	Models       *storage.ModelStore

	// Exporter and graphClient are nil unless Neo4j export is enabled.
	Exporter    *graphsink.Exporter
	graphClient graphsink.Client

	logger zerolog.Logger
}

// buildEngineConfig maps the application configuration onto the engine's.
func buildEngineConfig(cfg *config.Config) (*recommend.Config, error) {
	method, err := recommend.ParseMethod(cfg.Recommend.EnsembleMethod)
	if err != nil {
		return nil, err
	}
	rc := cfg.Recommend

	ec := recommend.DefaultConfig()
	if method != "" {
		ec.Method = method
	}
	ec.Weights = recommend.Weights{
		Content:       rc.ContentWeight,
		Collaborative: rc.CollaborativeWeight,
		Graph:         rc.GraphWeight,
	}
	ec.AdaptiveWeights = rc.AdaptiveWeights
	ec.Collaborative = recommend.CollaborativeConfig{
		Factors:          rc.Collaborative.Factors,
		Regularization:   rc.Collaborative.Regularization,
		Iterations:       rc.Collaborative.Iterations,
		UseFactorization: rc.Collaborative.UseFactorization,
		Aggregation:      rc.Collaborative.Aggregation,
		Workers:          rc.Collaborative.Workers,
	}
	ec.Graph = recommend.GraphConfig{
		EmbeddingDim: rc.Graph.EmbeddingDim,
		Layers:       rc.Graph.Layers,
		LearningRate: rc.Graph.LearningRate,
		Epochs:       rc.Graph.Epochs,
		BatchSize:    rc.Graph.BatchSize,
	}
	ec.Training.RetrainInterval = rc.RetrainInterval
	ec.Training.RetrainNewInteractions = rc.RetrainNewInteractions
	ec.Training.CollaborativeMinInteractions = rc.Collaborative.MinInteractions
	ec.Training.CollaborativeMinUsers = rc.Collaborative.MinUsers
	ec.Training.GraphMinInteractions = rc.Graph.MinInteractions
	ec.Training.GraphMinUsers = rc.Graph.MinUsers
	ec.Training.EvaluationHoldout = rc.EvaluationHoldout
	ec.Training.EvaluationK = rc.EvaluationK
	ec.Limits = recommend.LimitsConfig{
		DefaultK: rc.DefaultTopK,
		MaxK:     rc.MaxTopK,
		MinScore: rc.MinScore,
	}
	ec.Cache = recommend.CacheConfig{
		Enabled: rc.CacheTTL > 0 && rc.CacheSize > 0,
		TTL:     rc.CacheTTL,
		Size:    rc.CacheSize,
	}
	ec.DiversityLambda = rc.DiversityLambda
	ec.FilterExpression = rc.FilterExpression
	ec.Seed = rc.Seed

	if err := ec.Validate(); err != nil {
		return nil, err
	}
	return ec, nil
}

// buildHybrid creates both trainable models and the coordinator fusing them
// with content similarity.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildHybrid(ec *recommend.Config, logger zerolog.Logger) (*ensemble.Coordinator, error) {
	aggregation, err := algorithms.ParseAggregation(ec.Collaborative.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", recommend.ErrInvalidConfig, err)
	}

	collaborative := algorithms.NewLatentFactorModel(algorithms.LatentFactorConfig{
		Factors:        ec.Collaborative.Factors,
		Regularization: ec.Collaborative.Regularization,
		Iterations:     ec.Collaborative.Iterations,
		Aggregation:    aggregation,
		Workers:        ec.Collaborative.Workers,
		Seed:           ec.Seed,
	}, logger)

	embedding := algorithms.NewGraphEmbeddingModel(algorithms.GraphEmbeddingConfig{
		EmbeddingDim: ec.Graph.EmbeddingDim,
		Layers:       ec.Graph.Layers,
		LearningRate: ec.Graph.LearningRate,
		Epochs:       ec.Graph.Epochs,
		BatchSize:    ec.Graph.BatchSize,
		Seed:         ec.Seed,
	}, logger)

	return ensemble.New(ensemble.Config{
		Weights:         ec.Weights,
		Adaptive:        ec.AdaptiveWeights,
		DiversityLambda: ec.DiversityLambda,
	}, collaborative, embedding, logger), nil
}

// initRecommend opens the store, builds the engine and, when configured,
// seeds the store from the dataset file and connects the Neo4j exporter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	ec, err := buildEngineConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	hybrid, err := buildHybrid(ec, logger)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(storage.Options{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	c := &RecommendComponents{
		Config:       ec,
		DB:           db,
		Interactions: storage.NewInteractionStore(db),
		logger:       logger,
	}

	c.Models, err = storage.NewModelStore(db, cfg.Storage.KeepVersions)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("open model store: %w", err)
	}

	c.Engine, err = recommend.NewEngine(ec, hybrid, logger)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c.Engine.SetInteractionSource(c.Interactions)
	c.Engine.SetModelStore(c.Models)

	evaluator := evaluation.NewModelEvaluator(logger)
	c.Engine.SetEvaluator(func(model string, recs, truth map[string][]string, k int) map[string]float64 {
		return evaluator.Evaluate(model, recs, truth, []int{k})
	})

	if cfg.Dataset.Path != "" {
		n, err := loadDataset(ctx, cfg.Dataset.Path, c.Interactions)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		if n == 0 {
			logger.Info().Str("path", cfg.Dataset.Path).Msg("Dataset already loaded, skipping")
		} else {
			logger.Info().Str("path", cfg.Dataset.Path).Int("interactions", n).Msg("Dataset loaded")
		}
	}

	if cfg.Neo4j.Enabled {
		if err := c.initGraphExport(ctx, &cfg.Neo4j); err != nil {
			c.Close(ctx)
			return nil, err
		}
	}

	logger.Info().
		Str("method", string(ec.Method)).
		Bool("adaptive_weights", ec.AdaptiveWeights).
		Bool("in_memory", cfg.Storage.InMemory).
		Bool("graph_export", c.Exporter != nil).
		Msg("Recommendation engine initialized")

	return c, nil
}

func (c *RecommendComponents) initGraphExport(ctx context.Context, cfg *config.Neo4jConfig) error {
	client, err := graphsink.NewNeo4jClient(ctx, graphsink.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("connect neo4j: %w", err)
	}
	c.graphClient = graphsink.NewBreakerClient(client, graphsink.DefaultBreakerConfig(), c.logger)
	c.Exporter = graphsink.NewExporter(c.graphClient, 0, c.logger)

	// MERGE still works without the constraints, only slower.
	if err := c.Exporter.EnsureConstraints(ctx); err != nil {
		c.logger.Warn().Err(err).Str("uri", cfg.URI).Msg("Failed to create Neo4j constraints")
	}
	return nil
}

// GraphSource rebuilds the interaction graph from the stored history.
func (c *RecommendComponents) GraphSource(ctx context.Context) (*graph.Graph, error) {
	interactions, err := c.Interactions.ListInteractions(ctx)
	if err != nil {
		return nil, err
	}
	return graph.EventsFromInteractions(interactions).Graph(c.logger), nil
}

// HandlerOptions returns the API options backed by these components.
func (c *RecommendComponents) HandlerOptions() []api.HandlerOption {
	opts := []api.HandlerOption{
		api.WithTrainTimeout(c.Config.Training.Timeout),
		api.WithHealthCheck("storage", func(context.Context) error {
			if c.DB.IsClosed() {
				return errStorageClosed
			}
			return nil
		}),
	}
	if c.Exporter != nil {
		exporter := c.Exporter
		opts = append(opts,
			api.WithGraphExport(exporter, c.GraphSource),
			api.WithHealthCheck("neo4j", exporter.Ping),
		)
	}
	return opts
}

// Close releases the graph client and the badger store.
func (c *RecommendComponents) Close(ctx context.Context) {
	if c.graphClient != nil {
		if err := c.graphClient.Close(ctx); err != nil {
			c.logger.Error().Err(err).Msg("Error closing Neo4j client")
		}
	}
	if c.DB != nil && !c.DB.IsClosed() {
		if err := c.DB.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Error closing storage")
		}
	}
}
