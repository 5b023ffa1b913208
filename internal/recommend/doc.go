// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package recommend recommends mentors, study sessions and study groups to
// learners by fusing three signals.
//
// # Architecture
//
//   - Content: cosine similarity between fixed-layout profile vectors
//     (subpackage algorithms).
//   - Collaborative: truncated SVD or ALS latent factors learned from the
//     interaction matrix (algorithms).
//   - Graph: LightGCN embeddings trained with BPR over the user-item
//     interaction graph (algorithms, graph).
//
// The ensemble subpackage fuses the three with a weighted, cascading or
// context-aware policy and attaches explanations. Engine sits in front of
// it: it validates requests, drops candidates of the wrong kind or rejected
// by the optional CEL filter, clamps k, caches responses and orchestrates
// training. Models that are not trained are left out of fusion, so a cold
// start falls back to content scoring.
//
// # Training
//
// Train reads every interaction from an InteractionSource and trains the
// collaborative and graph models concurrently. Scheduled runs skip a model
// until its minimum data requirements are met. With holdout evaluation
// enabled, each user's latest interaction is held out and ranking metrics
// on it feed the ensemble's performance tracking. Trained snapshots are
// written to a ModelStore and restored on startup with LoadModels.
//
// # Usage
//
//	coordinator := ensemble.New(ensemble.Config{Weights: cfg.Weights}, collab, graph, logger)
//	engine, err := recommend.NewEngine(cfg, coordinator, logger)
//	engine.SetInteractionSource(interactionStore)
//	engine.SetModelStore(modelStore)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Kind:       recommend.KindSession,
//	    UserID:     "u1",
//	    Profile:    profile,
//	    Candidates: candidates,
//	    TopK:       5,
//	})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Only one training run is active at a
// time; a second call returns ErrTrainingInProgress. Requests are served
// from the previous models until a run swaps the new ones in.
package recommend
