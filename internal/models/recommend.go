// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package models

import (
	"time"

	"github.com/tomtom215/mentormatch/internal/middleware"
	"github.com/tomtom215/mentormatch/internal/recommend"
)

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	// Status is "healthy" when every dependency check passes, else "degraded".
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  float64           `json:"uptime_seconds"`
	Checks  map[string]string `json:"checks,omitempty"`
	Models  map[string]bool   `json:"models"`
}

// RecommendStatus is returned by GET /api/v1/recommend/status.
type RecommendStatus struct {
	recommend.Status
	Metrics   recommend.EngineMetrics    `json:"metrics"`
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// IngestResult is returned by POST /api/v1/interactions.
type IngestResult struct {
	Accepted int `json:"accepted"`
}

// SimilarItems is returned by GET /api/v1/items/{id}/similar.
type SimilarItems struct {
	ItemID string               `json:"item_id"`
	Items  []recommend.ScoredID `json:"items"`
	Count  int                  `json:"count"`
}

// GraphExport is returned by POST /api/v1/graph/export.
type GraphExport struct {
	Nodes      map[string]int `json:"nodes"`
	Edges      map[string]int `json:"edges"`
	Statements int            `json:"statements"`
	DurationMS int64          `json:"duration_ms"`
	ExportedAt time.Time      `json:"exported_at"`
}
