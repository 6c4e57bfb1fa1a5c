// Package embedding holds decorators around the provider: usage
// instrumentation and the retry policy. The indexer and search services
// stay retry-free; this is the one place that re-issues provider calls.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/domain"
)

// UsageRecorder receives token usage per successful provider call.
type UsageRecorder interface {
	Record(tokens int)
}

// InstrumentedEmbedder wraps Embedder with usage accounting and logging.
// Transport metrics (requests, duration, tokens) are recorded in
// transport/openai; this layer owns cost accounting.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	usage    UsageRecorder
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with usage accounting.
// usage may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	usage UsageRecorder, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		usage:    usage,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and records usage.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if p.usage != nil && result.TotalTokens > 0 {
		p.usage.Record(result.TotalTokens)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
