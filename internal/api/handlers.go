// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/mentormatch/internal/graphsink"
	"github.com/tomtom215/mentormatch/internal/middleware"
	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/graph"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/mentormatch/internal/api.Version=...".
var Version = "dev"

// Engine is the recommendation engine as seen by the handlers.
type Engine interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Train(ctx context.Context, opts recommend.TrainOptions) (*recommend.TrainResult, error)
	Ingest(ctx context.Context, interactions []recommend.Interaction) error
	SimilarItems(itemID string, k int) []recommend.ScoredID
	Status() recommend.Status
	GetMetrics() recommend.EngineMetrics
}

var _ Engine = (*recommend.Engine)(nil)

// GraphSource supplies the interaction graph to export.
type GraphSource func(ctx context.Context) (*graph.Graph, error)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response, validation and parameter helpers
//   - handlers_health.go: health endpoint
//   - handlers_recommend.go: recommendation, status, training and similar items
//   - handlers_interactions.go: interaction ingest
//   - handlers_graph.go: Neo4j graph export
type Handler struct {
	engine       Engine
	exporter     *graphsink.Exporter
	graphSource  GraphSource
	perfMon      *middleware.PerformanceMonitor
	checks       map[string]HealthCheck
	trainTimeout time.Duration
	startTime    time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithGraphExport enables POST /api/v1/graph/export.
func WithGraphExport(exporter *graphsink.Exporter, source GraphSource) HandlerOption {
	return func(h *Handler) {
		h.exporter = exporter
		h.graphSource = source
	}
}

// WithPerformanceMonitor adds per-endpoint latency to the status endpoint.
func WithPerformanceMonitor(pm *middleware.PerformanceMonitor) HandlerOption {
	return func(h *Handler) {
		h.perfMon = pm
	}
}

// WithHealthCheck registers a named dependency check for GET /health.
func WithHealthCheck(name string, check HealthCheck) HandlerOption {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

// WithTrainTimeout bounds synchronous training requests. Zero leaves the
// request context as the only bound.
func WithTrainTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.trainTimeout = timeout
	}
}

// NewHandler creates a new API handler.
func NewHandler(engine Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:    engine,
		checks:    make(map[string]HealthCheck),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PerformanceMonitor returns the configured monitor, or nil.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
