// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package reranking

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/algorithms"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking over profile vectors.
// It iteratively selects items that are both relevant and dissimilar to the
// items already selected:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// lambda = 1.0 keeps the input order; lambda = 0.0 is pure diversity.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank reorders items and keeps at most k of them. vectors maps item IDs to
// content vectors; items without a vector are never penalized. Ties keep the
// input order. Scores are not modified.
func (m *MMR) Rerank(ctx context.Context, items []recommend.Recommendation, vectors map[string][]float64, k int) []recommend.Recommendation {
	if len(items) == 0 || k <= 0 {
		return items
	}
	k = min(k, len(items), maxRerankSize)
	if m.lambda >= 1.0 {
		return items[:k]
	}

	sims := similarityMatrix(items, vectors)

	// penalty[i] is the highest similarity of item i to anything picked so far.
	penalty := make([]float64, len(items))
	taken := make([]bool, len(items))
	out := make([]recommend.Recommendation, 0, k)

	for len(out) < k && ctx.Err() == nil {
		best := -1
		var bestScore float64
		for i := range items {
			if taken[i] {
				continue
			}
			s := m.lambda*items[i].Score - (1-m.lambda)*penalty[i]
			if best < 0 || s > bestScore {
				best, bestScore = i, s
			}
		}

		taken[best] = true
		out = append(out, items[best])
		for i := range items {
			if sim := sims.At(i, best); !taken[i] && sim > penalty[i] {
				penalty[i] = sim
			}
		}
	}

	// Cancelled part way: the remainder keeps its input order.
	for i := 0; len(out) < k; i++ {
		if !taken[i] {
			out = append(out, items[i])
		}
	}
	return out
}

func similarityMatrix(items []recommend.Recommendation, vectors map[string][]float64) *mat.SymDense {
	n := len(items)
	sims := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		vi, ok := vectors[items[i].ItemID]
		if !ok {
			continue
		}
		for j := i + 1; j < n; j++ {
			if vj, ok := vectors[items[j].ItemID]; ok {
				sims.SetSym(i, j, algorithms.Similarity(vi, vj))
			}
		}
	}
	return sims
}
