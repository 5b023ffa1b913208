// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

/*
Package api provides the HTTP interface of Mentormatch.

Routing uses chi with production middleware from the chi ecosystem:
go-chi/cors for CORS, go-chi/httprate for per-IP rate limits, chi's
RealIP, Recoverer and Compress. Every response is wrapped in
models.APIResponse.

# Endpoints

	GET  /health                            liveness, dependency checks, model readiness
	GET  /metrics                           Prometheus exposition
	GET  /api/v1/recommend/status           training status, weights, counters, latency
	POST /api/v1/recommend/{kind}           mentor, session or group recommendations
	POST /api/v1/recommend/train            synchronous training run
	POST /api/v1/interactions               append interactions for the next run
	GET  /api/v1/items/{id}/similar?k=10    latent factor neighbours of an item
	POST /api/v1/graph/export               mirror the interaction graph into Neo4j

# Errors

Errors use stable codes: VALIDATION_ERROR and INVALID_KIND (400),
NOT_FOUND (404), TRAINING_IN_PROGRESS (409), INSUFFICIENT_DATA (422),
SERVICE_UNAVAILABLE (503) and INTERNAL_ERROR (500).

# Example

	curl -X POST localhost:8080/api/v1/recommend/mentor -d '{
	  "user_id": "u42",
	  "profile": {"interests": ["programming"], "skill_level": "beginner"},
	  "candidates": [{"kind": "mentor", "mentor": {"id": "m1", "domains": ["programming"]}}],
	  "top_k": 5
	}'
*/
package api
