package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/menudex/internal/domain"
)

// Memory is an in-process Store guarded by a RWMutex. It is the default
// backend for a single-node catalog; all operations are individually
// atomic and All returns a snapshot taken under one read lock.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]Entry
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory vector store. dim is the required vector
// dimension; 0 pins the dimension to that of the first upserted vector.
func NewMemory(dim int) *Memory {
	return &Memory{dim: dim, entries: make(map[string]Entry)}
}

// Upsert atomically replaces the entry for e.ID.
func (m *Memory) Upsert(_ context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry ID is required")
	}
	if len(e.Vector) == 0 {
		return fmt.Errorf("entry vector is required")
	}
	if e.Fingerprint == "" {
		return fmt.Errorf("entry fingerprint is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dim == 0 {
		m.dim = len(e.Vector)
	}
	if len(e.Vector) != m.dim {
		return fmt.Errorf("got %d dimensions, want %d: %w", len(e.Vector), m.dim, domain.ErrVectorDimMismatch)
	}

	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)
	e.Vector = vec
	m.entries[e.ID] = e
	return nil
}

// Get returns the entry for an id.
func (m *Memory) Get(_ context.Context, id string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	return e, ok, nil
}

// Fingerprint returns the stored fingerprint for an id.
func (m *Memory) Fingerprint(_ context.Context, id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return "", false, nil
	}
	return e.Fingerprint, true, nil
}

// Remove deletes the entry for an id. Idempotent.
func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// All returns every entry, sorted by id, as a snapshot taken under one
// read lock.
func (m *Memory) All(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
