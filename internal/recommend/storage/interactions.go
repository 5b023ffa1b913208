// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// interactionKeyPrefix keys are "interaction:<ingest unix nanos>:<uuid>" so
// iteration returns interactions in ingest order.
const interactionKeyPrefix = "interaction:"

// seedKeyPrefix marks datasets that were already appended, keyed by digest.
const seedKeyPrefix = "seed:"

// ErrInvalidInteraction is returned by Append for interactions that cannot
// be used for training.
var ErrInvalidInteraction = errors.New("invalid interaction")

// InteractionStore is a badger-backed append-only log of training
// interactions.
type InteractionStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewInteractionStore creates an interaction store over db.
func NewInteractionStore(db *badger.DB) *InteractionStore {
	return &InteractionStore{db: db, now: time.Now}
}

func validInteraction(in *recommend.Interaction) error {
	switch {
	case in.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidInteraction)
	case in.ItemID == "":
		return fmt.Errorf("%w: item_id is required", ErrInvalidInteraction)
	case in.Weight < 0 || math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0):
		return fmt.Errorf("%w: weight must be a non-negative number, got %v", ErrInvalidInteraction, in.Weight)
	}
	return nil
}

// Append stores interactions in order. Nothing is written when any
// interaction is invalid.
func (s *InteractionStore) Append(ctx context.Context, interactions []recommend.Interaction) error {
	return s.write(ctx, interactions, nil)
}

// AppendSeed appends a seed dataset identified by digest, once. It reports
// false without writing when the digest was recorded by an earlier call.
// The marker goes into the same write batch as the interactions.
func (s *InteractionStore) AppendSeed(ctx context.Context, digest string, interactions []recommend.Interaction) (bool, error) {
	if digest == "" {
		return false, fmt.Errorf("%w: seed digest is required", ErrInvalidInteraction)
	}
	seeded, err := s.Seeded(ctx, digest)
	if err != nil || seeded {
		return false, err
	}
	marker := []byte(seedKeyPrefix + digest)
	stamp := []byte(s.now().UTC().Format(time.RFC3339Nano))
	err = s.write(ctx, interactions, func(wb *badger.WriteBatch) error {
		return wb.Set(marker, stamp)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Seeded reports whether a dataset with digest was appended by AppendSeed.
func (s *InteractionStore) Seeded(ctx context.Context, digest string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(seedKeyPrefix + digest))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	}
	return false, fmt.Errorf("read seed marker: %w", err)
}

func (s *InteractionStore) write(ctx context.Context, interactions []recommend.Interaction, extra func(*badger.WriteBatch) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range interactions {
		if err := validInteraction(&interactions[i]); err != nil {
			return fmt.Errorf("interaction %d: %w", i, err)
		}
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	base := s.now().UnixNano()
	for i := range interactions {
		data, err := json.Marshal(&interactions[i])
		if err != nil {
			return fmt.Errorf("marshal interaction: %w", err)
		}
		key := fmt.Sprintf("%s%020d:%s", interactionKeyPrefix, base+int64(i), uuid.NewString())
		if err := wb.Set([]byte(key), data); err != nil {
			return fmt.Errorf("set interaction: %w", err)
		}
	}
	if extra != nil {
		if err := extra(wb); err != nil {
			return fmt.Errorf("set seed marker: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush interactions: %w", err)
	}
	return nil
}

// ListInteractions returns every stored interaction in ingest order.
func (s *InteractionStore) ListInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	var interactions []recommend.Interaction

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(interactionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var in recommend.Interaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			}); err != nil {
				return fmt.Errorf("unmarshal interaction: %w", err)
			}
			interactions = append(interactions, in)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return interactions, nil
}

// CountInteractions returns the number of stored interactions.
func (s *InteractionStore) CountInteractions(ctx context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // We only need to count keys
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(interactionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return count, nil
}

var _ recommend.InteractionSource = (*InteractionStore)(nil)
