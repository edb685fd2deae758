// Package mapping implements the durable original-path to clean-path cache
// used by the rewrite engine. The store is a cache of a pure function of its
// key, so concurrent writers racing on the same key are harmless as long as
// exactly one record per original path survives.
package mapping

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Store is a persistent key-value mapping keyed on the original reference
// string. Find is a point lookup on exact string equality. Upsert on an
// existing key overwrites the stored clean path. ClearAll drops every record,
// there is no partial delete.
type Store interface {
	Find(ctx context.Context, originalPath string) (cleanPath string, found bool, err error)
	Upsert(ctx context.Context, originalPath, cleanPath string) error
	ClearAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Open creates a store appropriate for the given cache location: SQLite-backed
// when path is not empty, process-local memory otherwise.
func Open(path string, log *zap.Logger) (Store, error) {
	if len(path) == 0 {
		if log != nil {
			log.Debug("No mapping cache location configured, using in-memory store")
		}
		return NewMemory(), nil
	}
	return OpenSQLite(path, log)
}

// Memory is a non-durable Store for tests and cache-less runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

func (m *Memory) Find(_ context.Context, originalPath string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clean, ok := m.records[originalPath]
	return clean, ok, nil
}

func (m *Memory) Upsert(_ context.Context, originalPath, cleanPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[originalPath] = cleanPath
	return nil
}

func (m *Memory) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]string)
	return nil
}

func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *Memory) Close() error {
	return nil
}
