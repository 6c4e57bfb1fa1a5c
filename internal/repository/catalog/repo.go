// Package catalog holds the in-memory catalog of food items. The search
// core only observes this store through mutation notifications; it is the
// demo-scale stand-in for the relational catalog owner.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kailas-cloud/menudex/internal/domain"
	domcat "github.com/kailas-cloud/menudex/internal/domain/catalog"
)

// Repo is an in-memory item store guarded by a RWMutex. List preserves
// insertion order, which reconciliation treats as catalog order.
type Repo struct {
	mu    sync.RWMutex
	items map[string]domcat.Item
	order []string
}

// New creates an empty catalog repository.
func New() *Repo {
	return &Repo{items: make(map[string]domcat.Item)}
}

// NewID returns a fresh store-assigned item id.
func NewID() string {
	return uuid.NewString()
}

// Put inserts or replaces an item. Returns true when the item was created.
func (r *Repo) Put(_ context.Context, item domcat.Item) (bool, error) {
	if item.ID() == "" {
		return false, fmt.Errorf("item ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[item.ID()]
	r.items[item.ID()] = item
	if !exists {
		r.order = append(r.order, item.ID())
	}
	return !exists, nil
}

// Get returns the item for an id.
func (r *Repo) Get(_ context.Context, id string) (domcat.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domcat.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrItemNotFound)
	}
	return item, nil
}

// Delete removes an item. Deleting an absent id returns ErrItemNotFound.
func (r *Repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrItemNotFound)
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all items in insertion order.
func (r *Repo) List(_ context.Context) ([]domcat.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domcat.Item, 0, len(r.items))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

// Count returns the number of items.
func (r *Repo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}
