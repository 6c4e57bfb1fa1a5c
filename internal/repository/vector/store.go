// Package vector holds the embedding vector store: one vector per catalog
// item id, keyed with the fingerprint of the document that produced it.
package vector

import (
	"context"
	"time"
)

// Entry is a stored embedding plus its staleness fingerprint. The pair is
// written atomically; a reader never observes a vector with the wrong
// fingerprint.
type Entry struct {
	ID          string
	Vector      []float32
	Fingerprint string
	GeneratedAt time.Time
}

// Store is the embedding vector storage contract.
type Store interface {
	// Upsert atomically replaces the entry for an id.
	Upsert(ctx context.Context, e Entry) error
	// Get returns the entry for an id, or found=false when absent.
	Get(ctx context.Context, id string) (Entry, bool, error)
	// Fingerprint returns the stored fingerprint for an id without
	// materializing the vector, or found=false when absent.
	Fingerprint(ctx context.Context, id string) (string, bool, error)
	// Remove deletes the entry for an id. Removing an absent id is a no-op.
	Remove(ctx context.Context, id string) error
	// All returns every entry as it existed at a single instant.
	All(ctx context.Context) ([]Entry, error)
}
