// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package algorithms implements the three scoring models behind the hybrid
// recommender.
//
// # Models
//
// Content-Based:
//   - VectorizeUser, VectorizeMentor, VectorizeSession and VectorizeGroup
//     encode profiles into fixed length-15 vectors over a shared subject
//     vocabulary.
//   - ContentScores applies per-kind scoring formulas; Explain produces the
//     human readable reason attached to each recommendation.
//
// Collaborative Filtering:
//   - LatentFactorModel factorizes the weighted user-item matrix either with
//     a truncated SVD or with alternating least squares, and predicts
//     global + user + item bias + dot(user, item).
//
// Graph Embedding:
//   - GraphEmbeddingModel propagates learned embeddings over the normalized
//     user-item bipartite graph (LightGCN) and optimizes the Bayesian
//     Personalized Ranking loss with Adam.
//
// # Cold Start
//
// The latent factor model never fails on unknown IDs: an unknown user and
// item predicts the global bias, an unknown user predicts global + item bias.
// The graph model returns nothing for unknown users; the ensemble treats an
// empty ranking as "no opinion".
//
// # Thread Safety
//
// Training builds the fitted state off to the side and swaps it in under
// the write lock, so readers always observe either the previous model or
// the new one. All read methods take the read lock.
//
// # Persistence
//
// Both trained models implement recommend.Persistable. Snapshots are plain
// gob-encodable structs (LatentSnapshot, GraphSnapshot); Restore validates
// dimensions and ID ordering before replacing the live state.
//
// # Usage Example
//
//	cf := algorithms.NewLatentFactorModel(algorithms.DefaultLatentFactorConfig(), logger)
//	if err := cf.Train(ctx, interactions, true); err != nil {
//	    return err
//	}
//	top := cf.RecommendItems("user-1", candidateIDs, 10)
package algorithms
