// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Options configures the badger database shared by the stores.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory.
	InMemory bool

	// SyncWrites forces fsync after every write.
	SyncWrites bool
}

// Open opens (or creates) the badger database described by opts.
func Open(opts Options) (*badger.DB, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, fmt.Errorf("storage path is required unless in-memory")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites

	// Reduce logging verbosity
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return db, nil
}
