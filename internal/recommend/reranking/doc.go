// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package reranking implements post-processing for recommendation diversity.
//
// Reranking runs after fusion:
//
//	Models -> Fusion -> Reranking -> Final list
//	          (relevance)  (diversity)
//
// Maximal Marginal Relevance (MMR) penalizes candidates whose content vector
// is close to one already selected, so a mentor list is not five copies of
// the same domain expert.
//
// # Usage Example
//
//	mmr := reranking.NewMMR(0.7)
//	diversified := mmr.Rerank(ctx, recs, vectors, 10)
package reranking
