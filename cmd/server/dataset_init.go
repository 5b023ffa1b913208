// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/graph"
	"github.com/tomtom215/mentormatch/internal/validation"
)

// seedStore is the write side of the interaction store.
type seedStore interface {
	AppendSeed(ctx context.Context, digest string, interactions []recommend.Interaction) (bool, error)
}

// loadDataset reads a JSON file of domain events (mentorships, sessions,
// groups, goals and feedback), converts it to weighted interactions and
// appends them to store. A file whose content was loaded before is skipped,
// so restarts against a persistent store do not duplicate interactions.
// It returns the number of interactions written.
func loadDataset(ctx context.Context, path string, store seedStore) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var events graph.Events
	if err := json.Unmarshal(data, &events); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if verr := validation.ValidateStruct(&events); verr != nil {
		return 0, fmt.Errorf("validate %s: %w", path, verr)
	}

	interactions := events.Interactions()
	if len(interactions) == 0 {
		return 0, nil
	}
	sum := sha256.Sum256(data)
	wrote, err := store.AppendSeed(ctx, hex.EncodeToString(sum[:]), interactions)
	if err != nil || !wrote {
		return 0, err
	}
	return len(interactions), nil
}
