// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package storage persists training interactions and model snapshots in an
// embedded BadgerDB database.
//
// # Overview
//
// Two stores share one database opened with Open:
//   - InteractionStore: append-only interaction log, the engine's training source
//   - ModelStore: versioned snapshots of the collaborative and graph models
//
// # Key Layout
//
//	interaction:<ingest unix nanos>:<uuid>   JSON recommend.Interaction
//	model_meta:<name>:<version>              JSON ModelMetadata
//	model_data:<name>:<version>              gzip(gob(snapshot))
//
// Versions are zero padded to ten digits so a prefix scan returns one
// model's versions in order.
//
// # Snapshot Format
//
// Snapshots are gob encoded. The SHA-256 of the encoded bytes is kept in
// the metadata and verified on every load, then the bytes are gzip
// compressed. Metadata lives under its own key so ListModels never reads
// model data.
//
// # Usage Example
//
//	db, err := storage.Open(storage.Options{Path: "/data/mentormatch"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	models, err := storage.NewModelStore(db, 3)
//	if err != nil {
//	    return err
//	}
//	interactions := storage.NewInteractionStore(db)
//
//	err = models.SaveModel(ctx, "collaborative", cf.Snapshot(), info)
//
//	var snap algorithms.LatentSnapshot
//	info, err := models.LoadLatestModel(ctx, "collaborative", &snap)
//
// # Thread Safety
//
// Both stores are safe for concurrent use. ModelStore serializes writes
// with a mutex around its version table; badger transactions provide
// isolation for everything else.
package storage
