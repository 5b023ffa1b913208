// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", "200", 3*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))

	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("after inc = %v, want %v", got, start+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("after dec = %v, want %v", got, start)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("mentor", "weighted"))
	RecordRecommendation("mentor", "weighted", 5, time.Millisecond)
	if got := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("mentor", "weighted")); got != before+1 {
		t.Errorf("recommend_requests_total = %v, want %v", got, before+1)
	}
}

func TestRecordTraining(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		skipped bool
		err     error
		status  string
	}{
		{"success", "collaborative", false, nil, "success"},
		{"skipped", "graph", true, nil, "skipped"},
		{"error wins over skipped", "graph", true, errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := TrainingRunsTotal.WithLabelValues(tt.model, tt.status)
			before := testutil.ToFloat64(counter)
			RecordTraining(tt.model, time.Second, tt.skipped, tt.err)
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("training runs %s = %v, want %v", tt.status, got, before+1)
			}
		})
	}
}

func TestSetModelReady(t *testing.T) {
	SetModelReady("graph", true)
	if got := testutil.ToFloat64(ModelReady.WithLabelValues("graph")); got != 1 {
		t.Errorf("ready gauge = %v, want 1", got)
	}
	SetModelReady("graph", false)
	if got := testutil.ToFloat64(ModelReady.WithLabelValues("graph")); got != 0 {
		t.Errorf("ready gauge = %v, want 0", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(RecommendCacheHits)
	misses := testutil.ToFloat64(RecommendCacheMisses)
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	if got := testutil.ToFloat64(RecommendCacheHits); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(RecommendCacheMisses); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}
