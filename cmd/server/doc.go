// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package main is the entry point for the Mentormatch server.
//
// Mentormatch recommends mentors, study sessions and study groups to users
// of a learning platform. Each request is answered by fusing three signals:
// content similarity between profiles, a latent factor model trained on the
// interaction history and a LightGCN graph embedding of the interaction
// graph.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config file and environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Storage: BadgerDB holding interactions and versioned model snapshots
//  4. Engine: latent factor and graph embedding models behind the ensemble coordinator
//  5. Dataset (optional): seed interactions from a JSON file of domain events
//  6. Neo4j (optional): graph export sink for Cypher exploration
//  7. HTTP Server: chi router with CORS, rate limiting and Prometheus metrics
//
// Long-running work runs under a suture supervisor tree:
//
//	mentormatch
//	├── training-layer
//	│   ├── recommend-service   (startup and scheduled retraining)
//	│   └── storage-gc          (badger value log GC)
//	└── api-layer
//	    └── http-server
//
// # Configuration
//
// Configuration is loaded with layered sources (highest priority wins):
//   - Environment variables (RECOMMEND_ENSEMBLE_METHOD, STORAGE_PATH, ...)
//   - Config file (config.yaml, or the file named by CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the training layer
//   - Closes the Neo4j driver and the badger store
//
// # Example Usage
//
// In-memory demo seeded from a dataset:
//
//	export STORAGE_IN_MEMORY=true
//	export DATASET_PATH=./events.json
//	./mentormatch
//
// Persistent store with Neo4j export:
//
//	export STORAGE_PATH=/data/mentormatch
//	export NEO4J_ENABLED=true
//	export NEO4J_URI=bolt://neo4j:7687
//	export NEO4J_PASSWORD=secret
//	./mentormatch
package main
