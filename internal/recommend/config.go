// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Method is the default ensemble fusion policy.
	Method Method `json:"method"`

	// Weights are the default fusion weights, normalized at runtime.
	Weights Weights `json:"weights"`

	// AdaptiveWeights derives the weighted-method weights from recent
	// evaluation results once every model has a history.
	AdaptiveWeights bool `json:"adaptive_weights"`

	// Collaborative contains latent factor model parameters.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Graph contains graph embedding model parameters.
	Graph GraphConfig `json:"graph"`

	// Training contains training schedule and data requirements.
	Training TrainingConfig `json:"training"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response cache parameters.
	Cache CacheConfig `json:"cache"`

	// DiversityLambda is the MMR relevance weight; 1 disables reranking.
	DiversityLambda float64 `json:"diversity_lambda"`

	// FilterExpression is an optional CEL candidate filter.
	FilterExpression string `json:"filter_expression,omitempty"`

	// Seed is the random seed for deterministic behavior.
	Seed int64 `json:"seed"`
}

// Weights is the (content, collaborative, graph) fusion weight triple.
type Weights struct {
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
	Graph         float64 `json:"graph"`
}

// Normalize returns weights scaled to sum to 1.0. All-zero weights are
// returned unchanged.
func (w Weights) Normalize() Weights {
	total := w.Content + w.Collaborative + w.Graph
	if total <= 0 {
		return w
	}
	return Weights{
		Content:       w.Content / total,
		Collaborative: w.Collaborative / total,
		Graph:         w.Graph / total,
	}
}

// Of returns the weight for a model name.
func (w Weights) Of(model string) float64 {
	switch model {
	case ModelContent:
		return w.Content
	case ModelCollaborative:
		return w.Collaborative
	case ModelGraph:
		return w.Graph
	}
	return 0
}

// ToMap converts weights to a map keyed by model name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		ModelContent:       w.Content,
		ModelCollaborative: w.Collaborative,
		ModelGraph:         w.Graph,
	}
}

// CollaborativeConfig contains latent factor model parameters.
type CollaborativeConfig struct {
	// Factors is the number of latent factors.
	Factors int `json:"factors"`

	// Regularization is the ridge penalty used by alternating least squares.
	Regularization float64 `json:"regularization"`

	// Iterations is the number of alternating least squares sweeps.
	Iterations int `json:"iterations"`

	// UseFactorization selects truncated SVD (true) or ALS (false).
	UseFactorization bool `json:"use_factorization"`

	// Aggregation combines duplicate (user, item) events: sum, max or last.
	Aggregation string `json:"aggregation"`

	// Workers is the number of goroutines used for per-entity solves.
	Workers int `json:"workers"`
}

// GraphConfig contains graph embedding model parameters.
type GraphConfig struct {
	EmbeddingDim int     `json:"embedding_dim"`
	Layers       int     `json:"layers"`
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Timeout bounds a full training run.
	Timeout time.Duration `json:"timeout"`

	// RetrainInterval is the maximum model age before retraining.
	RetrainInterval time.Duration `json:"retrain_interval"`

	// RetrainNewInteractions triggers retraining after this many new interactions.
	RetrainNewInteractions int `json:"retrain_new_interactions"`

	// Minimum data required before scheduled training touches each model.
	CollaborativeMinInteractions int `json:"collaborative_min_interactions"`
	CollaborativeMinUsers        int `json:"collaborative_min_users"`
	GraphMinInteractions         int `json:"graph_min_interactions"`
	GraphMinUsers                int `json:"graph_min_users"`

	// EvaluationHoldout trains on all but each user's latest interaction and
	// reports ranking metrics on the held-out ones.
	EvaluationHoldout bool `json:"evaluation_holdout"`

	// EvaluationK is the ranking cutoff for holdout metrics.
	EvaluationK int `json:"evaluation_k"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	DefaultK int     `json:"default_k"`
	MaxK     int     `json:"max_k"`
	MinScore float64 `json:"min_score"`
}

// CacheConfig contains response cache parameters.
type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	TTL     time.Duration `json:"ttl"`
	Size    int           `json:"size"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Method: MethodContextAware,
		Weights: Weights{
			Content:       0.3,
			Collaborative: 0.4,
			Graph:         0.3,
		},
		Collaborative: CollaborativeConfig{
			Factors:          20,
			Regularization:   0.1,
			Iterations:       20,
			UseFactorization: true,
			Aggregation:      "sum",
			Workers:          4,
		},
		Graph: GraphConfig{
			EmbeddingDim: 64,
			Layers:       3,
			LearningRate: 0.001,
			Epochs:       50,
			BatchSize:    1024,
		},
		Training: TrainingConfig{
			Timeout:                      30 * time.Minute,
			RetrainInterval:              7 * 24 * time.Hour,
			RetrainNewInteractions:       1000,
			CollaborativeMinInteractions: 100,
			CollaborativeMinUsers:        50,
			GraphMinInteractions:         500,
			GraphMinUsers:                200,
			EvaluationK:                  10,
		},
		Limits: LimitsConfig{
			DefaultK: 10,
			MaxK:     50,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			Size:    1000,
		},
		DiversityLambda: 1.0,
		Seed:            42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Method {
	case MethodWeighted, MethodCascading, MethodContextAware:
	default:
		return fmt.Errorf("%w: method %q", ErrInvalidConfig, c.Method)
	}

	w := c.Weights
	if w.Content < 0 || w.Collaborative < 0 || w.Graph < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	}
	if w.Content+w.Collaborative+w.Graph == 0 {
		return fmt.Errorf("%w: weights must not all be zero", ErrInvalidConfig)
	}

	if c.Collaborative.Factors < 1 {
		return fmt.Errorf("%w: collaborative.factors must be positive, got %d", ErrInvalidConfig, c.Collaborative.Factors)
	}
	if c.Collaborative.Regularization < 0 {
		return fmt.Errorf("%w: collaborative.regularization must be non-negative", ErrInvalidConfig)
	}
	switch c.Collaborative.Aggregation {
	case "", "sum", "max", "last":
	default:
		return fmt.Errorf("%w: collaborative.aggregation %q", ErrInvalidConfig, c.Collaborative.Aggregation)
	}

	if c.Graph.EmbeddingDim < 1 {
		return fmt.Errorf("%w: graph.embedding_dim must be positive, got %d", ErrInvalidConfig, c.Graph.EmbeddingDim)
	}
	if c.Graph.Layers < 0 {
		return fmt.Errorf("%w: graph.layers must be non-negative, got %d", ErrInvalidConfig, c.Graph.Layers)
	}
	if c.Graph.LearningRate <= 0 {
		return fmt.Errorf("%w: graph.learning_rate must be positive", ErrInvalidConfig)
	}

	if c.Training.Timeout <= 0 {
		return fmt.Errorf("%w: training.timeout must be positive, got %v", ErrInvalidConfig, c.Training.Timeout)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("%w: limits.default_k must be positive, got %d", ErrInvalidConfig, c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("%w: limits.max_k must be >= limits.default_k, got %d < %d", ErrInvalidConfig, c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.MinScore < 0 || c.Limits.MinScore > 1 {
		return fmt.Errorf("%w: limits.min_score must be in [0, 1]", ErrInvalidConfig)
	}

	if c.Cache.Enabled && (c.Cache.Size < 1 || c.Cache.TTL <= 0) {
		return fmt.Errorf("%w: cache.size and cache.ttl must be positive when caching is enabled", ErrInvalidConfig)
	}

	if c.DiversityLambda < 0 || c.DiversityLambda > 1 {
		return fmt.Errorf("%w: diversity_lambda must be in [0, 1], got %f", ErrInvalidConfig, c.DiversityLambda)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
