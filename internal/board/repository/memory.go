package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
)

// MemoryCache is a process-local Cache used when Redis is not configured.
// The board then survives process restarts only through the remote record.
type MemoryCache struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Load(ctx context.Context) (board.Board, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return board.MigrateJSON(c.data), nil
}

func (c *MemoryCache) Save(ctx context.Context, b board.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

// MemoryRemote is an in-memory Remote used by unit tests and by deployments
// running without MongoDB. Records survive only for the process lifetime.
type MemoryRemote struct {
	mu    sync.RWMutex
	store map[string]map[string]any
	saves int
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{store: make(map[string]map[string]any)}
}

func (m *MemoryRemote) Load(ctx context.Context, sub string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.store[sub]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (m *MemoryRemote) Save(ctx context.Context, sub string, b board.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[sub] = raw
	m.saves++
	return nil
}

// Seed installs a raw record for a subject, bypassing serialization.
func (m *MemoryRemote) Seed(sub string, raw map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[sub] = raw
}

// Saves reports how many writes have completed.
func (m *MemoryRemote) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
