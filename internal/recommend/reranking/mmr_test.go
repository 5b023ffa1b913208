// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package reranking

import (
	"context"
	"testing"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			if mmr.Lambda() != tt.wantLambda {
				t.Errorf("Lambda() = %f, want %f", mmr.Lambda(), tt.wantLambda)
			}
			if mmr.Name() != "mmr" {
				t.Errorf("Name() = %q, want %q", mmr.Name(), "mmr")
			}
		})
	}
}

// Three near-identical programming mentors score highest, followed by a
// databases and a mathematics mentor.
func diversityFixture() ([]recommend.Recommendation, map[string][]float64) {
	items := []recommend.Recommendation{
		{ItemID: "prog-1", Score: 1.0},
		{ItemID: "prog-2", Score: 0.95},
		{ItemID: "prog-3", Score: 0.9},
		{ItemID: "db-1", Score: 0.5},
		{ItemID: "math-1", Score: 0.4},
	}
	vectors := map[string][]float64{
		"prog-1": {0, 1, 0, 0},
		"prog-2": {0, 1, 0, 0},
		"prog-3": {0, 1, 0.1, 0},
		"db-1":   {0, 0, 0, 1},
		"math-1": {1, 0, 0, 0},
	}
	return items, vectors
}

func TestMMR_Rerank(t *testing.T) {
	items, vectors := diversityFixture()

	tests := []struct {
		name    string
		lambda  float64
		k       int
		wantLen int
	}{
		{"pure relevance", 1.0, 3, 3},
		{"balanced", 0.7, 3, 3},
		{"k larger than items", 0.7, 10, 5},
		{"k zero returns input", 0.7, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMMR(tt.lambda).Rerank(context.Background(), items, vectors, tt.k)
			if len(result) != tt.wantLen {
				t.Errorf("len(result) = %d, want %d", len(result), tt.wantLen)
			}
		})
	}
}

func TestMMR_Rerank_DiversityEffect(t *testing.T) {
	items, vectors := diversityFixture()

	t.Run("pure relevance keeps input order", func(t *testing.T) {
		result := NewMMR(1.0).Rerank(context.Background(), items, vectors, 3)
		for i, want := range []string{"prog-1", "prog-2", "prog-3"} {
			if result[i].ItemID != want {
				t.Errorf("result[%d] = %s, want %s", i, result[i].ItemID, want)
			}
		}
	})

	t.Run("low lambda promotes diversity", func(t *testing.T) {
		result := NewMMR(0.3).Rerank(context.Background(), items, vectors, 3)
		if result[0].ItemID != "prog-1" {
			t.Errorf("first pick = %s, want prog-1", result[0].ItemID)
		}
		for _, r := range result[1:] {
			if r.ItemID == "prog-2" || r.ItemID == "prog-3" {
				t.Errorf("near-duplicate %s selected over diverse items: %v", r.ItemID, result)
			}
		}
	})

	t.Run("scores are untouched", func(t *testing.T) {
		result := NewMMR(0.3).Rerank(context.Background(), items, vectors, 5)
		byID := make(map[string]float64, len(items))
		for _, it := range items {
			byID[it.ItemID] = it.Score
		}
		for _, r := range result {
			if r.Score != byID[r.ItemID] {
				t.Errorf("%s score = %v, want %v", r.ItemID, r.Score, byID[r.ItemID])
			}
		}
	})
}

func TestMMR_Rerank_MissingVectors(t *testing.T) {
	items := []recommend.Recommendation{
		{ItemID: "a", Score: 0.9},
		{ItemID: "b", Score: 0.8},
	}
	result := NewMMR(0.5).Rerank(context.Background(), items, nil, 2)
	if len(result) != 2 || result[0].ItemID != "a" || result[1].ItemID != "b" {
		t.Errorf("Rerank() without vectors = %v, want input order", result)
	}
}

func TestMMR_Rerank_Cancelled(t *testing.T) {
	items, vectors := diversityFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewMMR(0.3).Rerank(ctx, items, vectors, 3)
	if len(result) != 3 {
		t.Fatalf("len(result) = %d, want 3", len(result))
	}
	for i := range result {
		if result[i].ItemID != items[i].ItemID {
			t.Errorf("cancelled rerank should keep input order, got %v", result)
		}
	}
}

func TestMMR_Rerank_EmptyInput(t *testing.T) {
	mmr := NewMMR(0.7)

	if result := mmr.Rerank(context.Background(), nil, nil, 5); len(result) != 0 {
		t.Errorf("expected empty result for nil input, got %d items", len(result))
	}
	if result := mmr.Rerank(context.Background(), []recommend.Recommendation{}, nil, 5); len(result) != 0 {
		t.Errorf("expected empty result for empty slice, got %d items", len(result))
	}
}
