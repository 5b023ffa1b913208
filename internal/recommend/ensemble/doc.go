// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package ensemble fuses content, collaborative and graph scores into one
// ranked, explained recommendation list.
//
// # Methods
//
// Weighted: every model's scores are min-max normalized onto [0, 1] and
// averaged with the configured weights, dividing by the weights of the models
// that actually scored each item.
//
// Cascading: the graph model proposes 5k candidates, the collaborative model
// narrows them to 2k and content scoring picks the final k.
//
// Context-aware: weighted fusion with a weight triple chosen from the user's
// engagement streak and the recommendation kind. The coordinator's default
// weights are never modified.
//
// Models that are not trained are skipped, so an untrained engine still
// answers from content scores alone.
package ensemble
