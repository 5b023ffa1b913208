// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestPerformanceMonitor_Stats(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(100, 0, zerolog.Nop())
	for i := 1; i <= 10; i++ {
		pm.Record(RequestSample{
			Route:      "/api/v1/recommend/{kind}",
			Method:     http.MethodPost,
			Duration:   time.Duration(i) * time.Millisecond,
			StatusCode: http.StatusOK,
		})
	}
	pm.Record(RequestSample{Route: "/health", Method: http.MethodGet, Duration: time.Millisecond, StatusCode: http.StatusOK})
	pm.Record(RequestSample{Route: "/health", Method: http.MethodGet, Duration: 3 * time.Millisecond, StatusCode: http.StatusServiceUnavailable})

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("Stats() returned %d endpoints, want 2", len(stats))
	}

	rec := stats[0]
	if rec.Endpoint != "POST /api/v1/recommend/{kind}" || rec.RequestCount != 10 {
		t.Fatalf("busiest endpoint = %+v", rec)
	}
	if rec.AvgMS != 5.5 || rec.P50MS != 5 || rec.MaxMS != 10 || rec.P99MS != 10 {
		t.Errorf("latency stats = %+v", rec)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("health ErrorCount = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_Window(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, 0, zerolog.Nop())
	for i := range 5 {
		pm.Record(RequestSample{Route: "/r", Method: http.MethodGet, Duration: time.Duration(i)})
	}

	recent := pm.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("Recent() = %d samples, want 3", len(recent))
	}
	if recent[0].Duration != 2 || recent[2].Duration != 4 {
		t.Errorf("window = %v, want the last three samples", recent)
	}
	if got := pm.Recent(-1); len(got) != 0 {
		t.Errorf("Recent(-1) = %v, want empty", got)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pm := NewPerformanceMonitor(10, time.Nanosecond, zerolog.New(&buf))

	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/api/v1/items/{id}/similar", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/items/m1/similar", nil))

	recent := pm.Recent(1)
	if len(recent) != 1 {
		t.Fatal("no sample recorded")
	}
	if recent[0].Route != "/api/v1/items/{id}/similar" || recent[0].StatusCode != http.StatusNotFound {
		t.Errorf("sample = %+v", recent[0])
	}
	if !strings.Contains(buf.String(), "Slow request detected") {
		t.Errorf("expected slow request log, got %q", buf.String())
	}
}

func TestPerformanceMonitor_Concurrent(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(50, 0, zerolog.Nop())
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				pm.Record(RequestSample{Route: "/r", Method: http.MethodGet, Duration: time.Millisecond})
				_ = pm.Stats()
			}
		}()
	}
	wg.Wait()

	if got := len(pm.Recent(100)); got != 50 {
		t.Errorf("window size = %d, want 50", got)
	}
}
