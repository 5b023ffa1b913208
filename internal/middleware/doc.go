// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package middleware provides HTTP middleware for the Mentormatch API.
//
// All middleware has the chi signature func(http.Handler) http.Handler:
//
//   - RequestID: assigns X-Request-ID and a correlation ID, both stored in
//     the context for logging.Ctx
//   - PrometheusMetrics: request count, latency histogram and in-flight gauge
//   - PerformanceMonitor.Middleware: sliding-window latency percentiles
//     reported by the status endpoint, plus slow request warnings
//
// Metrics and samples are labelled with the chi route pattern, not the raw
// path, so item IDs never become label values. Requests that match no
// route are labelled "unmatched".
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Route("/api/v1", func(r chi.Router) {
//	    r.Use(middleware.PrometheusMetrics)
//	    r.Use(perf.Middleware)
//	    r.Post("/recommend/{kind}", h.Recommend)
//	})
package middleware
