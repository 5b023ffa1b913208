// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// BaseAlgorithm provides the lifecycle state and locking shared by the
// trainable models.
type BaseAlgorithm struct {
	name          string
	state         recommend.ModelState
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// State returns the lifecycle state of the model.
func (b *BaseAlgorithm) State() recommend.ModelState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// IsTrained returns whether predictions are valid.
func (b *BaseAlgorithm) IsTrained() bool {
	return b.State() == recommend.StateTrained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.state = recommend.StateTrained
	b.version++
	b.lastTrainedAt = time.Now()
}

// setState changes the lifecycle state without bumping the version.
// Must be called while holding the training lock.
func (b *BaseAlgorithm) setState(s recommend.ModelState) {
	b.state = s
}

func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// Index is a bijective mapping between external string IDs and dense
// zero-based indices. IDs are sorted so the same entity set always yields
// the same layout.
type Index struct {
	ids   []string
	index map[string]int
}

// NewIndex builds an index over the unique values of ids.
func NewIndex(ids []string) *Index {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	idx := &Index{
		ids:   unique,
		index: make(map[string]int, len(unique)),
	}
	for i, id := range unique {
		idx.index[id] = i
	}
	return idx
}

// Len returns the number of indexed IDs.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ids)
}

// Lookup returns the dense index of id.
func (x *Index) Lookup(id string) (int, bool) {
	if x == nil {
		return 0, false
	}
	i, ok := x.index[id]
	return i, ok
}

// ID returns the external ID at position i.
func (x *Index) ID(i int) string {
	return x.ids[i]
}

// IDs returns a copy of the indexed IDs in index order.
func (x *Index) IDs() []string {
	if x == nil {
		return nil
	}
	return slices.Clone(x.ids)
}

// userItemIndexes builds the user and item indexes for a training snapshot.
func userItemIndexes(interactions []recommend.Interaction) (users, items *Index) {
	userIDs := make([]string, 0, len(interactions))
	itemIDs := make([]string, 0, len(interactions))
	for i := range interactions {
		userIDs = append(userIDs, interactions[i].UserID)
		itemIDs = append(itemIDs, interactions[i].ItemID)
	}
	return NewIndex(userIDs), NewIndex(itemIDs)
}

// rankTopK sorts scores descending, keeping input order for ties, and
// truncates to k. k <= 0 keeps everything.
func rankTopK(scores []recommend.ScoredID, k int) []recommend.ScoredID {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if k > 0 && len(scores) > k {
		scores = scores[:k]
	}
	return scores
}

// cosineSimilarity computes cosine similarity between two equal-length vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
