// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package evaluation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/mentormatch/internal/recommend/algorithms"
)

// ErrLengthMismatch is returned when per-user recommendation and relevance
// lists do not line up.
var ErrLengthMismatch = errors.New("recommendations and relevant items must have the same length")

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func topK(recs []string, k int) []string {
	if k < len(recs) {
		return recs[:k]
	}
	return recs
}

func hits(recs []string, relevant map[string]struct{}) int {
	n := 0
	for _, id := range recs {
		if _, ok := relevant[id]; ok {
			n++
		}
	}
	return n
}

// PrecisionAtK is the share of the first k recommendations that are
// relevant. The denominator is k even when fewer are recommended.
func PrecisionAtK(recs, relevant []string, k int) float64 {
	if k <= 0 || len(recs) == 0 {
		return 0
	}
	return float64(hits(topK(recs, k), toSet(relevant))) / float64(k)
}

// RecallAtK is the share of distinct relevant items found in the first k
// recommendations.
func RecallAtK(recs, relevant []string, k int) float64 {
	if k <= 0 || len(recs) == 0 || len(relevant) == 0 {
		return 0
	}
	set := toSet(relevant)
	return float64(hits(topK(recs, k), set)) / float64(len(set))
}

// AveragePrecision averages precision at each relevant position of recs
// over the number of distinct relevant items.
func AveragePrecision(recs, relevant []string) float64 {
	if len(recs) == 0 || len(relevant) == 0 {
		return 0
	}
	set := toSet(relevant)

	score, found := 0.0, 0
	for i, id := range recs {
		if _, ok := set[id]; ok {
			found++
			score += float64(found) / float64(i+1)
		}
	}
	if found == 0 {
		return 0
	}
	return score / float64(len(set))
}

// MeanAveragePrecision is the mean AveragePrecision over users. The two
// slices are indexed by user.
func MeanAveragePrecision(recs, relevant [][]string) (float64, error) {
	if len(recs) != len(relevant) {
		return 0, ErrLengthMismatch
	}
	if len(recs) == 0 {
		return 0, nil
	}
	scores := make([]float64, len(recs))
	for i := range recs {
		scores[i] = AveragePrecision(recs[i], relevant[i])
	}
	return stat.Mean(scores, nil), nil
}

// NDCGAtK is the binary-relevance normalized discounted cumulative gain of
// the first k recommendations.
func NDCGAtK(recs, relevant []string, k int) float64 {
	if k <= 0 || len(recs) == 0 || len(relevant) == 0 {
		return 0
	}
	set := toSet(relevant)

	dcg := 0.0
	for i, id := range topK(recs, k) {
		if _, ok := set[id]; ok {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	idcg := 0.0
	for i := 0; i < min(len(set), k); i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// HitRateAtK is 1 when any relevant item is in the first k recommendations.
func HitRateAtK(recs, relevant []string, k int) float64 {
	if k <= 0 || len(recs) == 0 || len(relevant) == 0 {
		return 0
	}
	if hits(topK(recs, k), toSet(relevant)) > 0 {
		return 1
	}
	return 0
}

// Coverage is the share of the catalog recommended to at least one user.
// Recommended IDs outside the catalog are not counted.
func Coverage(recs [][]string, catalog []string) float64 {
	if len(catalog) == 0 {
		return 0
	}
	items := toSet(catalog)
	seen := make(map[string]struct{}, len(items))
	for _, list := range recs {
		for _, id := range list {
			if _, ok := items[id]; ok {
				seen[id] = struct{}{}
			}
		}
	}
	return float64(len(seen)) / float64(len(items))
}

// IntraListDiversity is the mean pairwise cosine distance between the
// feature vectors of recs. Items without a vector are skipped; fewer than
// two vectors give 0.
func IntraListDiversity(recs []string, features map[string][]float64) float64 {
	vectors := make([][]float64, 0, len(recs))
	for _, id := range recs {
		if v, ok := features[id]; ok {
			vectors = append(vectors, v)
		}
	}
	if len(vectors) < 2 {
		return 0
	}

	distances := make([]float64, 0, len(vectors)*(len(vectors)-1)/2)
	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			distances = append(distances, 1-algorithms.Similarity(vectors[i], vectors[j]))
		}
	}
	return stat.Mean(distances, nil)
}
