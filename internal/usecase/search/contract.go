package search

import (
	"context"

	"github.com/kailas-cloud/menudex/internal/domain"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

// VectorReader reads the stored embedding snapshot for ranking.
type VectorReader interface {
	All(ctx context.Context) ([]vector.Entry, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
