// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mentormatch/internal/middleware"
)

// Router wires the handlers into a chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil ChiMiddleware uses the defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.With(router.chiMiddleware.RateLimitHealth(), APISecurityHeaders()).Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Recommendation API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if pm := router.handler.PerformanceMonitor(); pm != nil {
			r.Use(pm.Middleware)
		}

		// status is registered before {kind} so it is never taken as a kind
		r.Get("/recommend/status", router.handler.RecommendStatus)
		r.With(router.chiMiddleware.RateLimitTrain()).Post("/recommend/train", router.handler.Train)
		r.Post("/recommend/{kind}", router.handler.Recommend)

		r.With(router.chiMiddleware.RateLimitIngest()).Post("/interactions", router.handler.Interactions)
		r.Get("/items/{id}/similar", router.handler.SimilarItems)
		r.With(router.chiMiddleware.RateLimitExport()).Post("/graph/export", router.handler.GraphExport)
	})

	return r
}
