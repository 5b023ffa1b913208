// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Dataset   DatasetConfig   `koanf:"dataset"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds CORS and rate limiting settings for the API.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds hybrid recommendation engine settings.
type RecommendConfig struct {
	// EnsembleMethod selects the fusion policy: weighted, cascading or context_aware.
	// Default: context_aware
	EnsembleMethod string `koanf:"ensemble_method"`

	// ContentWeight, CollaborativeWeight and GraphWeight are the default
	// fusion weights. They are renormalized to sum to 1.
	// Default: 0.3 / 0.4 / 0.3
	ContentWeight       float64 `koanf:"content_weight"`
	CollaborativeWeight float64 `koanf:"collaborative_weight"`
	GraphWeight         float64 `koanf:"graph_weight"`

	// AdaptiveWeights replaces the weights above with ones derived from
	// holdout evaluation once every model has a history.
	// Default: false
	AdaptiveWeights bool `koanf:"adaptive_weights"`

	Collaborative CollaborativeConfig `koanf:"collaborative"`
	Graph         GraphConfig         `koanf:"graph"`

	// DefaultTopK is used when a request does not specify top_k.
	// Default: 10
	DefaultTopK int `koanf:"default_top_k"`

	// MaxTopK caps top_k for every request.
	// Default: 50
	MaxTopK int `koanf:"max_top_k"`

	// MinScore drops fused results scoring below this value.
	// Default: 0 (keep everything)
	MinScore float64 `koanf:"min_score"`

	// DiversityLambda controls the relevance vs diversity tradeoff (0-1).
	// 1.0 = pure relevance (MMR disabled)
	// Default: 1.0
	DiversityLambda float64 `koanf:"diversity_lambda"`

	// FilterExpression is an optional CEL expression evaluated against every
	// candidate before scoring, e.g. `candidate.kind != "group" || candidate.members >= 3`.
	FilterExpression string `koanf:"filter_expression"`

	// CacheTTL is how long to cache recommendation results.
	// Default: 5m
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// CacheSize is the maximum number of cached responses.
	// Default: 1000
	CacheSize int `koanf:"cache_size"`

	// TrainOnStartup trains both models when the service starts.
	// Default: true
	TrainOnStartup bool `koanf:"train_on_startup"`

	// RetrainInterval is the maximum model age before scheduled retraining.
	// Default: 168h (7 days)
	RetrainInterval time.Duration `koanf:"retrain_interval"`

	// RetrainNewInteractions triggers retraining once this many interactions
	// have arrived since the last run.
	// Default: 1000
	RetrainNewInteractions int `koanf:"retrain_new_interactions"`

	// CheckInterval is how often the training service evaluates the two
	// retraining triggers above.
	// Default: 1h
	CheckInterval time.Duration `koanf:"check_interval"`

	// EvaluationHoldout holds out each user's latest interaction during
	// scheduled training and reports ranking metrics per model.
	// Default: false
	EvaluationHoldout bool `koanf:"evaluation_holdout"`

	// EvaluationK is the cutoff used for holdout metrics.
	// Default: 10
	EvaluationK int `koanf:"evaluation_k"`

	// Seed makes model initialisation and sampling reproducible.
	// Default: 42
	Seed int64 `koanf:"seed"`
}

// CollaborativeConfig holds latent factor model settings.
type CollaborativeConfig struct {
	Factors          int     `koanf:"factors"`
	Regularization   float64 `koanf:"regularization"`
	Iterations       int     `koanf:"iterations"`
	UseFactorization bool    `koanf:"use_factorization"`
	// Aggregation decides how duplicate (user, item) events combine: sum, max or last.
	Aggregation     string `koanf:"aggregation"`
	Workers         int    `koanf:"workers"`
	MinInteractions int    `koanf:"min_interactions"`
	MinUsers        int    `koanf:"min_users"`
}

// GraphConfig holds graph embedding model settings.
type GraphConfig struct {
	EmbeddingDim    int     `koanf:"embedding_dim"`
	Layers          int     `koanf:"layers"`
	LearningRate    float64 `koanf:"learning_rate"`
	Epochs          int     `koanf:"epochs"`
	BatchSize       int     `koanf:"batch_size"`
	MinInteractions int     `koanf:"min_interactions"`
	MinUsers        int     `koanf:"min_users"`
}

// StorageConfig configures the badger store used for interactions and model snapshots.
type StorageConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps everything in memory (tests, demos).
	InMemory bool `koanf:"in_memory"`

	// KeepVersions is how many snapshots per model survive pruning.
	// Default: 3
	KeepVersions int `koanf:"keep_versions"`
}

// Neo4jConfig configures the optional graph export sink.
type Neo4jConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URI            string `koanf:"uri"`
	Database       string `koanf:"database"`
	Username       string `koanf:"username"`
	Password       string `koanf:"password"`
	MaxConnections int    `koanf:"max_connections"`
}

// DatasetConfig points at an optional JSON seed file of domain events.
type DatasetConfig struct {
	Path string `koanf:"path"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
