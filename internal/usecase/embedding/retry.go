package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/domain"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 200 * time.Millisecond
)

// RetryingEmbedder retries transient provider failures with exponential
// backoff. Timeouts and rate limits are retried; invalid input never is.
type RetryingEmbedder struct {
	inner       domain.Embedder
	maxAttempts int
	baseBackoff time.Duration
	logger      *zap.Logger
}

// NewRetryingEmbedder wraps an embedder with a retry policy.
func NewRetryingEmbedder(inner domain.Embedder, maxAttempts int, baseBackoff time.Duration, logger *zap.Logger) *RetryingEmbedder {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseBackoff <= 0 {
		baseBackoff = DefaultBaseBackoff
	}
	return &RetryingEmbedder{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		logger:      logger,
	}
}

// Embed calls the inner embedder, retrying retryable failures up to
// maxAttempts total attempts with doubling backoff.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var lastErr error
	backoff := r.baseBackoff

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.inner.Embed(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.IsRetryable(err) {
			return domain.EmbeddingResult{}, err
		}
		if attempt == r.maxAttempts {
			break
		}

		r.logger.Warn("Retrying embedding request",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return domain.EmbeddingResult{}, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return domain.EmbeddingResult{}, fmt.Errorf("all %d attempts failed: %w", r.maxAttempts, lastErr)
}
