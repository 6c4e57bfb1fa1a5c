// Package search ranks catalog items against a free-text query by meaning:
// the query is embedded and scored against every stored item vector with
// cosine similarity. Exact linear scan; the catalog is small.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/menudex/internal/domain/search/result"
)

// Service answers semantic queries over the vector store.
type Service struct {
	vectors     VectorReader
	embed       Embedder
	defaultTopK int
	maxTopK     int
}

// New creates a search service.
func New(vectors VectorReader, embed Embedder) *Service {
	return &Service{vectors: vectors, embed: embed, defaultTopK: DefaultTopK, maxTopK: 100}
}

// WithLimits configures topK defaults and bounds.
func (s *Service) WithLimits(defaultTopK, maxTopK int) *Service {
	if defaultTopK > 0 {
		s.defaultTopK = defaultTopK
	}
	if maxTopK > 0 {
		s.maxTopK = maxTopK
	}
	return s
}

// Search embeds the query text and returns the topK closest items.
// A provider failure on the query text is surfaced as-is; no ranking is
// attempted and no partial result is returned.
func (s *Service) Search(ctx context.Context, queryText string, topK int) ([]result.Result, error) {
	if topK < 1 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	embResult, err := s.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	entries, err := s.vectors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vector snapshot: %w", err)
	}

	return Rank(embResult.Embedding, entries, topK), nil
}
