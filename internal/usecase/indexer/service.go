// Package indexer keeps the vector store in sync with the catalog. It
// reacts to item mutations, re-embeds only when the canonical document's
// fingerprint changed, and reconciles full catalog snapshots. Work is
// serialized per item id; distinct ids run in parallel.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/menudex/internal/domain/batch"
	"github.com/kailas-cloud/menudex/internal/domain/catalog"
	"github.com/kailas-cloud/menudex/internal/metrics"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

// Service drives vector store updates from catalog mutation events.
type Service struct {
	vectors     VectorStore
	embed       Embedder
	locks       *keyedMutex
	logger      *zap.Logger
	degradedDim int // >0 enables zero-vector substitution on embed failure
}

// New creates an indexer service.
func New(vectors VectorStore, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		vectors: vectors,
		embed:   embed,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// WithZeroVectorFallback enables the degraded mode: when the provider
// fails, the item is indexed with a zero vector of dim dimensions instead
// of surfacing the error. A zero vector scores 0 against every query, so
// the item is effectively invisible but present. Opt-in only; never a
// default, because it silently corrupts ranking quality.
func (s *Service) WithZeroVectorFallback(dim int) *Service {
	s.degradedDim = dim
	return s
}

// ItemCreated indexes a freshly created catalog item. The provider is
// called once; on failure the item stays absent from search and the error
// is returned so the catalog layer can retry.
func (s *Service) ItemCreated(ctx context.Context, item catalog.Item) error {
	s.locks.Lock(item.ID())
	defer s.locks.Unlock(item.ID())

	if err := s.embedAndUpsert(ctx, item); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("create", "error").Inc()
		return err
	}
	metrics.IndexOperationsTotal.WithLabelValues("create", "ok").Inc()
	return nil
}

// ItemUpdated re-indexes an item after a catalog update. When the new
// document's fingerprint matches the stored one the provider is not
// called and the store is not touched. Re-embedding happens synchronously
// so the item is never searchable with a stale vector once this returns;
// a provider failure removes the old entry and surfaces the error, and a
// later retry re-embeds because the stored fingerprint is gone.
func (s *Service) ItemUpdated(ctx context.Context, item catalog.Item) error {
	s.locks.Lock(item.ID())
	defer s.locks.Unlock(item.ID())

	fp := catalog.ItemFingerprint(item)

	stored, found, err := s.vectors.Fingerprint(ctx, item.ID())
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("update", "error").Inc()
		return fmt.Errorf("read stored fingerprint: %w", err)
	}
	if found && stored == fp {
		metrics.IndexOperationsTotal.WithLabelValues("update", "skipped").Inc()
		return nil
	}

	if err := s.embedAndUpsert(ctx, item); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("update", "error").Inc()
		return err
	}
	metrics.IndexOperationsTotal.WithLabelValues("update", "ok").Inc()
	return nil
}

// ItemDeleted removes an item's vector. Idempotent; the id's lifecycle is
// over and a later create for the same id starts fresh.
func (s *Service) ItemDeleted(ctx context.Context, id string) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	if err := s.vectors.Remove(ctx, id); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("remove vector: %w", err)
	}
	metrics.IndexOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// ReconcileAll brings the vector store in sync with a full catalog
// snapshot. Items are processed one at a time in catalog order, one
// provider call per changed item; an unchanged catalog performs zero
// provider calls. Vectors for ids absent from the snapshot are removed.
// Failures are collected per item; earlier upserts are never rolled back.
// On context cancellation the partial report is returned with ctx.Err().
func (s *Service) ReconcileAll(ctx context.Context, items []catalog.Item) (dombatch.Report, error) {
	results := make([]dombatch.Result, 0, len(items))
	keep := make(map[string]struct{}, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return dombatch.NewReport(results, nil), fmt.Errorf("reconcile cancelled: %w", err)
		}
		keep[item.ID()] = struct{}{}
		results = append(results, s.reconcileItem(ctx, item))
	}

	if err := ctx.Err(); err != nil {
		return dombatch.NewReport(results, nil), fmt.Errorf("reconcile cancelled: %w", err)
	}

	removed, err := s.removeOrphans(ctx, keep)
	if err != nil {
		return dombatch.NewReport(results, removed), err
	}

	report := dombatch.NewReport(results, removed)
	s.logger.Info("Catalog reconciled",
		zap.Int("items", len(items)),
		zap.Int("embedded", report.Embedded()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", len(report.FailedIDs())),
		zap.Int("removed", len(removed)),
	)
	return report, nil
}

func (s *Service) reconcileItem(ctx context.Context, item catalog.Item) dombatch.Result {
	s.locks.Lock(item.ID())
	defer s.locks.Unlock(item.ID())

	fp := catalog.ItemFingerprint(item)

	stored, found, err := s.vectors.Fingerprint(ctx, item.ID())
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("reconcile", "error").Inc()
		return dombatch.NewError(item.ID(), fmt.Errorf("read stored fingerprint: %w", err))
	}
	if found && stored == fp {
		metrics.IndexOperationsTotal.WithLabelValues("reconcile", "skipped").Inc()
		return dombatch.NewSkipped(item.ID())
	}

	if err := s.embedAndUpsert(ctx, item); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("reconcile", "error").Inc()
		return dombatch.NewError(item.ID(), err)
	}
	metrics.IndexOperationsTotal.WithLabelValues("reconcile", "ok").Inc()
	return dombatch.NewOK(item.ID())
}

func (s *Service) removeOrphans(ctx context.Context, keep map[string]struct{}) ([]string, error) {
	entries, err := s.vectors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan vectors for orphans: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if _, ok := keep[e.ID]; ok {
			continue
		}
		if err := s.vectors.Remove(ctx, e.ID); err != nil {
			return removed, fmt.Errorf("remove orphan %s: %w", e.ID, err)
		}
		removed = append(removed, e.ID)
	}
	return removed, nil
}

// embedAndUpsert runs the document through the provider and atomically
// replaces the stored entry. Caller must hold the item's lock. On provider
// failure any previously stored entry is removed: the item must not stay
// searchable with a vector computed from an older document.
func (s *Service) embedAndUpsert(ctx context.Context, item catalog.Item) error {
	doc := catalog.Document(item)
	fp := catalog.Fingerprint(doc)

	result, err := s.embed.Embed(ctx, doc)
	if err != nil {
		if s.degradedDim > 0 {
			s.logger.Warn("Embedding failed, indexing zero vector (degraded mode)",
				zap.String("item_id", item.ID()),
				zap.Error(err),
			)
			return s.upsert(ctx, item.ID(), make([]float32, s.degradedDim), fp)
		}
		if rmErr := s.vectors.Remove(ctx, item.ID()); rmErr != nil {
			s.logger.Error("Failed to purge stale vector after embed failure",
				zap.String("item_id", item.ID()),
				zap.Error(rmErr),
			)
		}
		return fmt.Errorf("embed item %s: %w", item.ID(), err)
	}

	return s.upsert(ctx, item.ID(), result.Embedding, fp)
}

func (s *Service) upsert(ctx context.Context, id string, vec []float32, fp string) error {
	e := vector.Entry{
		ID:          id,
		Vector:      vec,
		Fingerprint: fp,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.vectors.Upsert(ctx, e); err != nil {
		return fmt.Errorf("upsert vector %s: %w", id, err)
	}
	return nil
}
