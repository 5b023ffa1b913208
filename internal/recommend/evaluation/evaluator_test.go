// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package evaluation

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	recs := map[string][]string{
		"u1": {"a", "b", "c"},
		"u2": {"x", "y"},
		"u3": {"q"},
	}
	truth := map[string][]string{
		"u1": {"a"},
		"u2": {"z"},
		"u4": {"a"},
	}

	got := Evaluate(recs, truth, []int{1, 2})

	want := Metrics{
		"precision@1": 0.5,
		"precision@2": 0.25,
		"recall@1":    0.5,
		"recall@2":    0.5,
		"ndcg@1":      0.5,
		"ndcg@2":      0.5,
		"hit_rate@1":  0.5,
		"hit_rate@2":  0.5,
		"map":         0.5,
	}
	if len(got) != len(want) {
		t.Fatalf("Evaluate() = %v, want %d metrics", got, len(want))
	}
	for name, v := range want {
		if !approx(got[name], v) {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}
}

func TestEvaluate_DefaultK(t *testing.T) {
	t.Parallel()

	got := Evaluate(nil, nil, nil)
	for _, k := range DefaultK {
		if _, ok := got[MetricName("ndcg", k)]; !ok {
			t.Errorf("missing ndcg@%d", k)
		}
	}
	if got["map"] != 0 {
		t.Errorf("map = %v, want 0 with no users", got["map"])
	}
}

func TestModelEvaluator(t *testing.T) {
	t.Parallel()

	e := NewModelEvaluator(zerolog.Nop())

	if _, ok := e.BestModel("ndcg@1"); ok {
		t.Error("BestModel() should report false before any evaluation")
	}

	truth := map[string][]string{"u1": {"a"}, "u2": {"b"}}
	e.Evaluate(recommend.ModelCollaborative, map[string][]string{"u1": {"x", "a"}, "u2": {"b"}}, truth, []int{1})
	e.Evaluate(recommend.ModelGraph, map[string][]string{"u1": {"a"}, "u2": {"b"}}, truth, []int{1})
	e.Evaluate(recommend.ModelContent, map[string][]string{"u1": {"x"}, "u2": {"y"}}, truth, []int{1})

	if best, ok := e.BestModel("ndcg@1"); !ok || best != recommend.ModelGraph {
		t.Errorf("BestModel() = %s, %v; want graph", best, ok)
	}

	comparison := e.Compare()
	if got := comparison["precision@1"]; len(got) != 3 ||
		!approx(got[recommend.ModelCollaborative], 0.5) ||
		!approx(got[recommend.ModelGraph], 1) ||
		!approx(got[recommend.ModelContent], 0) {
		t.Errorf("Compare()[precision@1] = %v", got)
	}

	history := e.History()
	if len(history) != 3 {
		t.Fatalf("len(History()) = %d, want 3", len(history))
	}
	if history[0].Model != recommend.ModelCollaborative || history[0].Users != 2 {
		t.Errorf("History()[0] = %+v", history[0])
	}

	t.Run("latest result per model wins in compare", func(t *testing.T) {
		e.Evaluate(recommend.ModelGraph, map[string][]string{"u1": {"x"}}, truth, []int{1})
		if got := e.Compare()["precision@1"][recommend.ModelGraph]; got != 0 {
			t.Errorf("graph precision@1 = %v, want 0 after re-evaluation", got)
		}
	})
}
