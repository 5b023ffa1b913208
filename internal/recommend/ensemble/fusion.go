// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package ensemble

import (
	"math"
	"sort"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// neutralScore is assigned when a score list carries no ranking signal.
const neutralScore = 0.5

// Normalize min-max scales scores onto [0, 1]. When every score is equal
// each ID maps to 0.5.
func Normalize(scores []recommend.ScoredID) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = math.Min(lo, s.Score)
		hi = math.Max(hi, s.Score)
	}

	span := hi - lo
	for _, s := range scores {
		if span == 0 || math.IsNaN(span) {
			out[s.ID] = neutralScore
			continue
		}
		out[s.ID] = (s.Score - lo) / span
	}
	return out
}

// ModelScores holds the normalized scores of each model for one request.
// A nil map means the model did not score.
type ModelScores struct {
	Content       map[string]float64
	Collaborative map[string]float64
	Graph         map[string]float64
}

func (m ModelScores) of(model string) map[string]float64 {
	switch model {
	case recommend.ModelContent:
		return m.Content
	case recommend.ModelCollaborative:
		return m.Collaborative
	case recommend.ModelGraph:
		return m.Graph
	}
	return nil
}

var modelOrder = []string{recommend.ModelContent, recommend.ModelCollaborative, recommend.ModelGraph}

// Weighted fuses normalized model scores. Each ID in ids scored by at least
// one ready model gets the weighted mean over the models that scored it,
// divided by the weights actually applied. The result is sorted by score
// descending, ties in ids order.
func Weighted(ids []string, scores ModelScores, w recommend.Weights, status recommend.ModelStatus) []recommend.ScoredID {
	out := make([]recommend.ScoredID, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		var sum, applied float64
		scored := false
		for _, model := range modelOrder {
			if !status.Ready(model) {
				continue
			}
			v, ok := scores.of(model)[id]
			if !ok {
				continue
			}
			scored = true
			sum += w.Of(model) * v
			applied += w.Of(model)
		}
		if !scored {
			continue
		}

		score := sum
		if applied > 0 {
			score = sum / applied
		}
		out = append(out, recommend.ScoredID{ID: id, Score: clamp01(score)})
	}

	sortDescending(out)
	return out
}

// Stage ranks ids by one model and keeps the best k. A nil Stage is a model
// that is not ready.
type Stage func(ids []string, k int) []recommend.ScoredID

// Cascade funnels ids through three stages: the graph stage keeps
// min(len, 5k), the collaborative stage narrows to 2k and the content stage
// ranks the survivors to k. A stage that is not ready, or that has no
// opinion, passes its input through. If the content stage scores nothing the
// first k survivors are returned at 0.5.
func Cascade(ids []string, graph, collaborative Stage, content func(ids []string) []recommend.ScoredID, k int) []recommend.ScoredID {
	if len(ids) == 0 || k <= 0 {
		return []recommend.ScoredID{}
	}

	survivors := ids
	if graph != nil {
		if ranked := graph(survivors, min(len(survivors), 5*k)); len(ranked) > 0 {
			survivors = restrict(ranked, survivors)
		}
	}

	if collaborative != nil {
		if ranked := collaborative(survivors, 2*k); len(ranked) > 0 {
			survivors = restrict(ranked, survivors)
		}
	}

	final := content(survivors)
	if len(final) == 0 {
		n := min(k, len(survivors))
		out := make([]recommend.ScoredID, n)
		for i := 0; i < n; i++ {
			out[i] = recommend.ScoredID{ID: survivors[i], Score: neutralScore}
		}
		return out
	}

	final = restrictScored(final, survivors)
	for i := range final {
		final[i].Score = clamp01(final[i].Score)
	}
	sortDescending(final)
	if len(final) > k {
		final = final[:k]
	}
	return final
}

// restrict returns the IDs of ranked, in ranked order, that are members of
// allowed. A stage may reorder or drop but never widen.
func restrict(ranked []recommend.ScoredID, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		if _, ok := set[r.ID]; ok {
			out = append(out, r.ID)
			delete(set, r.ID)
		}
	}
	return out
}

func restrictScored(scores []recommend.ScoredID, allowed []string) []recommend.ScoredID {
	set := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := scores[:0:0]
	for _, s := range scores {
		if _, ok := set[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ContextWeights picks a weight triple from the user's engagement streak and
// shifts it for the recommendation kind: mentors lean on content, groups on
// the social graph. The result is renormalized to sum to 1.
func ContextWeights(streak int, kind recommend.Kind) recommend.Weights {
	var w recommend.Weights
	switch {
	case streak < 5:
		w = recommend.Weights{Content: 0.7, Collaborative: 0.2, Graph: 0.1}
	case streak > 30:
		w = recommend.Weights{Content: 0.2, Collaborative: 0.4, Graph: 0.4}
	default:
		w = recommend.Weights{Content: 0.3, Collaborative: 0.4, Graph: 0.3}
	}

	switch kind {
	case recommend.KindMentor:
		w.Content += 0.1
		w.Graph -= 0.1
	case recommend.KindGroup:
		w.Graph += 0.15
		w.Content -= 0.15
	}

	// A low-streak mentor request takes the graph weight to zero.
	w.Content = math.Max(w.Content, 0)
	w.Graph = math.Max(w.Graph, 0)

	return w.Normalize()
}

func sortDescending(scores []recommend.ScoredID) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
