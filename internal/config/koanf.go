// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mentormatch/config.yaml",
	"/etc/mentormatch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths are split on commas when they arrive as a single string.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			EnsembleMethod:      "context_aware",
			ContentWeight:       0.3,
			CollaborativeWeight: 0.4,
			GraphWeight:         0.3,
			Collaborative: CollaborativeConfig{
				Factors:          20,
				Regularization:   0.1,
				Iterations:       20,
				UseFactorization: true,
				Aggregation:      "sum",
				Workers:          4,
				MinInteractions:  100,
				MinUsers:         50,
			},
			Graph: GraphConfig{
				EmbeddingDim:    64,
				Layers:          3,
				LearningRate:    0.001,
				Epochs:          50,
				BatchSize:       1024,
				MinInteractions: 500,
				MinUsers:        200,
			},
			DefaultTopK:            10,
			MaxTopK:                50,
			MinScore:               0,
			DiversityLambda:        1.0,
			CacheTTL:               5 * time.Minute,
			CacheSize:              1000,
			TrainOnStartup:         true,
			RetrainInterval:        7 * 24 * time.Hour,
			RetrainNewInteractions: 1000,
			CheckInterval:          time.Hour,
			EvaluationK:            10,
			Seed:                   42,
		},
		Storage: StorageConfig{
			Path:         "data/mentormatch",
			KeepVersions: 3,
		},
		Neo4j: Neo4jConfig{
			URI:            "bolt://localhost:7687",
			Database:       "neo4j",
			MaxConnections: 10,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: defaults, file, env.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RECOMMEND_GRAPH_EPOCHS -> recommend.graph.epochs
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Ensemble
	"recommend_ensemble_method":          "recommend.ensemble_method",
	"recommend_content_weight":           "recommend.content_weight",
	"recommend_collaborative_weight":     "recommend.collaborative_weight",
	"recommend_graph_weight":             "recommend.graph_weight",
	"recommend_adaptive_weights":         "recommend.adaptive_weights",
	"recommend_default_top_k":            "recommend.default_top_k",
	"recommend_max_top_k":                "recommend.max_top_k",
	"recommend_min_score":                "recommend.min_score",
	"recommend_diversity_lambda":         "recommend.diversity_lambda",
	"recommend_filter_expression":        "recommend.filter_expression",
	"recommend_cache_ttl":                "recommend.cache_ttl",
	"recommend_cache_size":               "recommend.cache_size",
	"recommend_train_on_startup":         "recommend.train_on_startup",
	"recommend_retrain_interval":         "recommend.retrain_interval",
	"recommend_retrain_new_interactions": "recommend.retrain_new_interactions",
	"recommend_check_interval":           "recommend.check_interval",
	"recommend_evaluation_holdout":       "recommend.evaluation_holdout",
	"recommend_evaluation_k":             "recommend.evaluation_k",
	"recommend_seed":                     "recommend.seed",

	// Latent factor model
	"recommend_cf_factors":          "recommend.collaborative.factors",
	"recommend_cf_regularization":   "recommend.collaborative.regularization",
	"recommend_cf_iterations":       "recommend.collaborative.iterations",
	"recommend_cf_use_svd":          "recommend.collaborative.use_factorization",
	"recommend_cf_aggregation":      "recommend.collaborative.aggregation",
	"recommend_cf_workers":          "recommend.collaborative.workers",
	"recommend_cf_min_interactions": "recommend.collaborative.min_interactions",
	"recommend_cf_min_users":        "recommend.collaborative.min_users",

	// Graph embedding model
	"recommend_graph_embedding_dim":    "recommend.graph.embedding_dim",
	"recommend_graph_layers":           "recommend.graph.layers",
	"recommend_graph_learning_rate":    "recommend.graph.learning_rate",
	"recommend_graph_epochs":           "recommend.graph.epochs",
	"recommend_graph_batch_size":       "recommend.graph.batch_size",
	"recommend_graph_min_interactions": "recommend.graph.min_interactions",
	"recommend_graph_min_users":        "recommend.graph.min_users",

	// Storage
	"storage_path":          "storage.path",
	"storage_in_memory":     "storage.in_memory",
	"storage_keep_versions": "storage.keep_versions",

	// Neo4j
	"neo4j_enabled":         "neo4j.enabled",
	"neo4j_uri":             "neo4j.uri",
	"neo4j_database":        "neo4j.database",
	"neo4j_username":        "neo4j.username",
	"neo4j_password":        "neo4j.password",
	"neo4j_max_connections": "neo4j.max_connections",

	// Dataset
	"dataset_path": "dataset.path",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped keys return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
