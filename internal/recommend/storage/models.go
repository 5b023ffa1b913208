// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// Key prefixes for model snapshots. Versions are zero padded so keys of one
// model sort by version.
const (
	modelMetaPrefix = "model_meta:"
	modelDataPrefix = "model_data:"
)

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name ("collaborative", "graph").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// InteractionCount is the number of interactions used for training.
	InteractionCount int `json:"interaction_count"`

	// ItemCount is the number of unique items.
	ItemCount int `json:"item_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Info converts the metadata to the engine's snapshot description.
func (m *ModelMetadata) Info() recommend.SnapshotInfo {
	return recommend.SnapshotInfo{
		Version:            m.Version,
		TrainedAt:          m.TrainedAt,
		InteractionCount:   m.InteractionCount,
		UserCount:          m.UserCount,
		ItemCount:          m.ItemCount,
		TrainingDurationMS: m.TrainingDurationMS,
	}
}

// ModelStore persists versioned model snapshots in badger. Snapshots are
// gob encoded, checksummed and gzip compressed; metadata is stored as JSON
// under a separate key so listing never touches model data.
type ModelStore struct {
	db           *badger.DB
	keepVersions int
	mu           sync.RWMutex

	// Keep track of latest version per model
	versions map[string]int
}

// NewModelStore creates a model store over db. SaveModel keeps the newest
// keepVersions snapshots per model; values below 1 keep everything.
func NewModelStore(db *badger.DB, keepVersions int) (*ModelStore, error) {
	s := &ModelStore{
		db:           db,
		keepVersions: keepVersions,
		versions:     make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

// scanModels rebuilds the latest-version table from stored metadata keys.
func (s *ModelStore) scanModels() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(modelMetaPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			name, version, ok := parseModelKey(string(it.Item().Key()), modelMetaPrefix)
			if !ok {
				continue
			}
			if current, found := s.versions[name]; !found || version > current {
				s.versions[name] = version
			}
		}
		return nil
	})
}

// parseModelKey extracts the model name and version from a key like
// "model_meta:graph:0000000003".
func parseModelKey(key, prefix string) (name string, version int, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", 0, false
	}
	return rest[:i], version, true
}

func modelKey(prefix, name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefix, name, version))
}

// Save stores data as version of model name.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *ModelStore) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || strings.ContainsRune(name, ':') {
		return fmt.Errorf("invalid model name %q", name)
	}
	if version < 1 {
		return fmt.Errorf("invalid model version %d", version)
	}

	// Serialize model data
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.Name = name
	meta.Version = version

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(modelDataPrefix, name, version), compressed.Bytes()); err != nil {
			return fmt.Errorf("set model data: %w", err)
		}
		if err := txn.Set(modelKey(modelMetaPrefix, name, version), metaJSON); err != nil {
			return fmt.Errorf("set model metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}
	return nil
}

// SaveModel stores snapshot as the next version of name and prunes old
// versions. info.Version is used when it is newer than the stored latest.
//
//nolint:gocritic // info passed by value is acceptable for this write operation
func (s *ModelStore) SaveModel(ctx context.Context, name string, snapshot any, info recommend.SnapshotInfo) error {
	s.mu.RLock()
	version := s.versions[name] + 1
	s.mu.RUnlock()
	if info.Version > version {
		version = info.Version
	}

	meta := ModelMetadata{
		TrainedAt:          info.TrainedAt,
		InteractionCount:   info.InteractionCount,
		ItemCount:          info.ItemCount,
		UserCount:          info.UserCount,
		TrainingDurationMS: info.TrainingDurationMS,
	}
	if err := s.Save(ctx, name, version, snapshot, meta); err != nil {
		return err
	}

	if s.keepVersions > 0 {
		if err := s.Prune(ctx, name, s.keepVersions); err != nil {
			return fmt.Errorf("prune %s: %w", name, err)
		}
	}
	return nil
}

// Load decodes version of model name into target. Version 0 loads the
// latest version. The checksum is verified before decoding.
func (s *ModelStore) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("no model found for %s: %w", name, recommend.ErrNotFound)
		}
	}

	var meta ModelMetadata
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(modelMetaPrefix, name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("model %s v%d: %w", name, version, recommend.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get model metadata: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}

		item, err = txn.Get(modelKey(modelDataPrefix, name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("model %s v%d data: %w", name, version, recommend.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get model data: %w", err)
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != meta.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", meta.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &meta, nil
}

// LoadLatestModel decodes the newest snapshot of name into into.
func (s *ModelStore) LoadLatestModel(ctx context.Context, name string, into any) (recommend.SnapshotInfo, error) {
	meta, err := s.Load(ctx, name, 0, into)
	if err != nil {
		return recommend.SnapshotInfo{}, err
	}
	return meta.Info(), nil
}

// GetLatestVersion returns the latest version number for a model.
func (s *ModelStore) GetLatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns the metadata of the latest version of every model,
// sorted by name.
func (s *ModelStore) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	slices.Sort(names)

	models := make([]ModelMetadata, 0, len(names))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, name := range names {
			item, err := txn.Get(modelKey(modelMetaPrefix, name, s.versions[name]))
			if err != nil {
				continue
			}
			var meta ModelMetadata
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				continue
			}
			models = append(models, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Versions returns the stored versions of name, newest first.
func (s *ModelStore) Versions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.versionsLocked(name)
}

func (s *ModelStore) versionsLocked(name string) ([]int, error) {
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(modelMetaPrefix + name + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n, v, ok := parseModelKey(string(it.Item().Key()), modelMetaPrefix)
			if ok && n == name {
				versions = append(versions, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	slices.Sort(versions)
	slices.Reverse(versions)
	return versions, nil
}

// Delete removes a specific model version.
func (s *ModelStore) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteLocked(name, version); err != nil {
		return err
	}

	if s.versions[name] != version {
		return nil
	}

	// Find next latest version
	remaining, err := s.versionsLocked(name)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		delete(s.versions, name)
		return nil
	}
	s.versions[name] = remaining[0]
	return nil
}

func (s *ModelStore) deleteLocked(name string, version int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		metaKey := modelKey(modelMetaPrefix, name, version)
		if _, err := txn.Get(metaKey); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("model %s v%d: %w", name, version, recommend.ErrNotFound)
		} else if err != nil {
			return fmt.Errorf("get model metadata: %w", err)
		}
		if err := txn.Delete(metaKey); err != nil {
			return fmt.Errorf("delete model metadata: %w", err)
		}
		if err := txn.Delete(modelKey(modelDataPrefix, name, version)); err != nil {
			return fmt.Errorf("delete model data: %w", err)
		}
		return nil
	})
}

// Prune removes old model versions, keeping only the latest keepVersions.
func (s *ModelStore) Prune(ctx context.Context, name string, keepVersions int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}
	if _, ok := s.versions[name]; !ok {
		return nil
	}

	versions, err := s.versionsLocked(name)
	if err != nil {
		return err
	}

	for i := keepVersions; i < len(versions); i++ {
		if err := s.deleteLocked(name, versions[i]); err != nil && !errors.Is(err, recommend.ErrNotFound) {
			return err
		}
	}
	return nil
}

var _ recommend.ModelStore = (*ModelStore)(nil)
