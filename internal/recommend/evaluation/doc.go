// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package evaluation provides offline ranking metrics for recommendation
// lists: precision, recall, nDCG and hit rate at a cutoff, average
// precision and MAP, catalog coverage and intra-list diversity.
//
// Relevance is binary. ModelEvaluator records per-model results so models
// can be compared. The server wires Evaluate into the engine, which scores
// a leave-latest-out holdout after training and feeds the results to
// ensemble performance tracking.
package evaluation
