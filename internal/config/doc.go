// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

/*
Package config provides centralized configuration management for Mentormatch.

Configuration is layered with koanf v2. Later layers override earlier ones:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, or the first of DefaultConfigPaths that exists
 3. Environment variables

Environment variables are mapped explicitly in envMappings so unrelated
variables never leak into the configuration. Comma-separated values are
split for slice fields such as CORS_ORIGINS.

# Sections

  - server: HTTP listener (HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT)
  - security: CORS origins and rate limiting
  - logging: zerolog level, format and caller info
  - recommend: ensemble method and weights, model hyper-parameters,
    top-k bounds, min score, MMR lambda, CEL filter expression, cache,
    retraining cadence and holdout evaluation
  - storage: badger directory or in-memory mode, snapshot retention
  - neo4j: optional graph export sink
  - dataset: optional JSON seed file of domain events

# Example

	server:
	  port: 8080
	recommend:
	  ensemble_method: weighted
	  filter_expression: 'candidate.kind != "session" || candidate.current_participants < candidate.max_participants'
	  graph:
	    epochs: 100
	neo4j:
	  enabled: true
	  uri: bolt://neo4j:7687

Load validates the result; the first invalid section aborts startup with an
error naming the offending environment variable.
*/
package config
