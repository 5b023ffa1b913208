// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateSecurity,
		c.validateRecommend,
		c.validateStorage,
		c.validateNeo4j,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend

	switch r.EnsembleMethod {
	case "weighted", "cascading", "context_aware":
	default:
		return fmt.Errorf("RECOMMEND_ENSEMBLE_METHOD must be weighted, cascading or context_aware, got %q", r.EnsembleMethod)
	}

	if r.ContentWeight < 0 || r.CollaborativeWeight < 0 || r.GraphWeight < 0 {
		return fmt.Errorf("recommend weights must be non-negative")
	}
	if r.ContentWeight+r.CollaborativeWeight+r.GraphWeight == 0 {
		return fmt.Errorf("recommend weights must not all be zero")
	}

	if r.DefaultTopK < 1 || r.MaxTopK < r.DefaultTopK {
		return fmt.Errorf("RECOMMEND_DEFAULT_TOP_K must be >= 1 and <= RECOMMEND_MAX_TOP_K (%d), got %d", r.MaxTopK, r.DefaultTopK)
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return fmt.Errorf("RECOMMEND_MIN_SCORE must be in [0, 1], got %f", r.MinScore)
	}
	if r.DiversityLambda < 0 || r.DiversityLambda > 1 {
		return fmt.Errorf("RECOMMEND_DIVERSITY_LAMBDA must be in [0, 1], got %f", r.DiversityLambda)
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must not be negative")
	}

	switch r.Collaborative.Aggregation {
	case "sum", "max", "last":
	default:
		return fmt.Errorf("RECOMMEND_CF_AGGREGATION must be sum, max or last, got %q", r.Collaborative.Aggregation)
	}
	if r.Collaborative.Factors < 1 {
		return fmt.Errorf("RECOMMEND_CF_FACTORS must be positive, got %d", r.Collaborative.Factors)
	}
	if r.Collaborative.Regularization < 0 {
		return fmt.Errorf("RECOMMEND_CF_REGULARIZATION must not be negative")
	}

	if r.Graph.EmbeddingDim < 1 || r.Graph.Layers < 0 {
		return fmt.Errorf("recommend graph embedding_dim must be positive and layers non-negative")
	}
	if r.Graph.LearningRate <= 0 {
		return fmt.Errorf("RECOMMEND_GRAPH_LEARNING_RATE must be positive, got %f", r.Graph.LearningRate)
	}
	if r.Graph.BatchSize < 1 {
		return fmt.Errorf("RECOMMEND_GRAPH_BATCH_SIZE must be positive, got %d", r.Graph.BatchSize)
	}

	if r.CheckInterval <= 0 {
		return fmt.Errorf("RECOMMEND_CHECK_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required unless STORAGE_IN_MEMORY is set")
	}
	if c.Storage.KeepVersions < 1 {
		return fmt.Errorf("STORAGE_KEEP_VERSIONS must be at least 1")
	}
	return nil
}

func (c *Config) validateNeo4j() error {
	if !c.Neo4j.Enabled {
		return nil
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required when NEO4J_ENABLED is true")
	}
	if c.Neo4j.Password != "" && c.Neo4j.Username == "" {
		return fmt.Errorf("NEO4J_USERNAME is required when NEO4J_PASSWORD is set")
	}
	return nil
}
