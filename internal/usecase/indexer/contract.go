package indexer

import (
	"context"

	"github.com/kailas-cloud/menudex/internal/domain"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

// VectorStore is the storage contract for indexed embeddings.
type VectorStore interface {
	Upsert(ctx context.Context, e vector.Entry) error
	Fingerprint(ctx context.Context, id string) (string, bool, error)
	Remove(ctx context.Context, id string) error
	All(ctx context.Context) ([]vector.Entry, error)
}

// Embedder vectorizes canonical item documents.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
