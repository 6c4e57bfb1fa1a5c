package health

import (
	"context"

	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// VectorReader exposes the indexed entries for the index check.
type VectorReader interface {
	All(ctx context.Context) ([]vector.Entry, error)
}
