// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ValueLogCollector is satisfied by *badger.DB.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

var _ ValueLogCollector = (*badger.DB)(nil)

// StorageGCService periodically reclaims badger value log space left by
// pruned model snapshots.
type StorageGCService struct {
	db           ValueLogCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewStorageGCService creates the value log GC service. interval <= 0
// defaults to 10 minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStorageGCService(db ValueLogCollector, interval time.Duration, logger zerolog.Logger) *StorageGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StorageGCService{
		db:           db,
		interval:     interval,
		discardRatio: 0.5,
		logger:       logger.With().Str("service", "storage_gc").Logger(),
		name:         "storage-gc",
	}
}

// Serve implements suture.Service. In-memory databases have no value log,
// so the service idles until shutdown.
func (s *StorageGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rewrites, err := s.collect()
			switch {
			case errors.Is(err, badger.ErrGCInMemoryMode):
				s.logger.Debug().Msg("in-memory storage, value log GC disabled")
				<-ctx.Done()
				return ctx.Err()
			case errors.Is(err, badger.ErrRejected):
				// a GC is already running
			case err != nil:
				return fmt.Errorf("value log GC: %w", err)
			case rewrites > 0:
				s.logger.Debug().Int("rewrites", rewrites).Msg("value log GC reclaimed space")
			}
		}
	}
}

// collect runs GC until badger reports nothing left to rewrite.
func (s *StorageGCService) collect() (int, error) {
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(s.discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return rewrites, nil
		}
		if err != nil {
			return rewrites, err
		}
		rewrites++
	}
}

// String implements fmt.Stringer for suture logging.
func (s *StorageGCService) String() string {
	return s.name
}
