// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/mentormatch/internal/middleware"
)

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &mockEngine{})

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/recommend/status", "", http.StatusOK},
		{http.MethodPost, "/api/v1/recommend/mentor", `{"user_id":"u1"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/recommend/sessions", `{"user_id":"u1"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/interactions", `{"interactions":[{"user_id":"u1","item_id":"g1","weight":1}]}`, http.StatusAccepted},
		{http.MethodGet, "/api/v1/items/g1/similar", "", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/recommend/mentor", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w, resp := doRequest(t, h, tt.method, tt.path, tt.body)
		if w.Code != tt.wantStatus {
			t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			continue
		}
		if resp.Status == "" {
			t.Errorf("%s %s returned no envelope", tt.method, tt.path)
		}
	}
}

func TestRouter_RequestIDAndSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get(middleware.RequestIDHeader); got != "trace-123" {
		t.Errorf("request ID = %q, want trace-123", got)
	}
	if !strings.Contains(w.Body.String(), `"request_id":"trace-123"`) {
		t.Errorf("body should echo the request ID: %s", w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("API responses should carry security headers")
	}
	if w.Header().Get("ETag") == "" || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("caching headers = %v", w.Header())
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &mockEngine{})
	doRequest(t, h, http.MethodPost, "/api/v1/recommend/group", `{"user_id":"u1"}`)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `endpoint="/api/v1/recommend/{kind}"`) {
		t.Error("API metrics should be labelled by route pattern")
	}
}

func TestRouter_Compression(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &mockEngine{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend/status", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", w.Header().Get("Content-Encoding"))
	}
}
