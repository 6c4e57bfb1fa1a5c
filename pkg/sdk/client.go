package menudex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/db"
	dbRedis "github.com/kailas-cloud/menudex/internal/db/redis"
	domcat "github.com/kailas-cloud/menudex/internal/domain/catalog"
	catalogrepo "github.com/kailas-cloud/menudex/internal/repository/catalog"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
	openaiEmb "github.com/kailas-cloud/menudex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/menudex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/menudex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/menudex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/menudex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Item is the public catalog item shape.
type Item struct {
	ID                  string
	Name                string
	Category            string
	Company             string
	ImageURL            string
	TextureLevel        int
	TextureNotes        string
	NutritionSummary    string
	AllergensContains   []string
	AllergensMayContain []string
	Properties          []string
	NutritionVector     []float64
	Fingerprint         string
}

// Hit is one semantic search result.
type Hit struct {
	ID    string
	Name  string
	Score float64
	Rank  int
}

// ReconcileReport summarizes a full catalog sync.
type ReconcileReport struct {
	Embedded int
	Skipped  int
	Failed   []string
	Removed  []string
}

// Client is the menudex SDK entry point.
type Client struct {
	store   db.Store
	catalog *catalogrepo.Repo
	indexer *indexeruc.Service
	search  *searchuc.Service
	health  *healthuc.Service
	tracker *embeddinguc.Tracker
}

// New creates a menudex Client. The provided context is used for the
// initial store readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		keyPrefix:  "menudex:",
		dimensions: 1536,
		model:      "text-embedding-3-small",
		maxRetries: embeddinguc.DefaultMaxAttempts,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	var store db.Store
	var vectors indexeruc.VectorStore
	switch cfg.driver {
	case "memory":
		vectors = vector.NewMemory(cfg.dimensions)
	case "redis", "valkey":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("menudex: create store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("menudex: database not ready: %w", err)
		}
		store = s
		vectors = vector.NewRedis(s, cfg.keyPrefix, cfg.dimensions)
	default:
		return nil, fmt.Errorf("menudex: unknown driver %q", cfg.driver)
	}

	embedder := cfg.embedder
	if embedder == nil {
		if cfg.openaiAPIKey == "" {
			if store != nil {
				store.Close()
			}
			return nil, errors.New("menudex: embedding provider required (use WithOpenAI or WithEmbedder)")
		}
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openaiAPIKey,
			BaseURL:    cfg.openaiBaseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
		embedder = embeddinguc.NewRetryingEmbedder(
			base, cfg.maxRetries, embeddinguc.DefaultBaseBackoff, cfg.logger,
		)
	}

	tracker := embeddinguc.NewTracker(0)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "openai", cfg.model, tracker, cfg.logger)

	idx := indexeruc.New(vectors, embedder, cfg.logger)
	if cfg.degraded {
		idx = idx.WithZeroVectorFallback(cfg.dimensions)
	}
	search := searchuc.New(vectors, embedder)
	if cfg.defaultTopK > 0 || cfg.maxTopK > 0 {
		search = search.WithLimits(cfg.defaultTopK, cfg.maxTopK)
	}

	return &Client{
		store:   store,
		catalog: catalogrepo.New(),
		indexer: idx,
		search:  search,
		health:  healthuc.New(store, nil, vectors),
		tracker: tracker,
	}, nil
}

// Close releases the underlying store connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// CreateItem adds an item to the catalog and indexes it. An empty ID gets
// a store-assigned one. A provider failure keeps the item in the catalog
// but out of search; retry with UpdateItem.
func (c *Client) CreateItem(ctx context.Context, item Item) (Item, error) {
	if item.ID == "" {
		item.ID = catalogrepo.NewID()
	}
	dom, err := toDomain(item)
	if err != nil {
		return Item{}, err
	}
	if _, err := c.catalog.Put(ctx, dom); err != nil {
		return Item{}, fmt.Errorf("menudex: store item: %w", err)
	}
	if err := c.indexer.ItemCreated(ctx, dom); err != nil {
		return Item{}, fmt.Errorf("menudex: index item: %w", err)
	}
	return fromDomain(dom), nil
}

// UpdateItem replaces an existing item. Re-embedding happens only when the
// semantic fields changed.
func (c *Client) UpdateItem(ctx context.Context, item Item) (Item, error) {
	if _, err := c.catalog.Get(ctx, item.ID); err != nil {
		return Item{}, fmt.Errorf("menudex: %w", err)
	}
	dom, err := toDomain(item)
	if err != nil {
		return Item{}, err
	}
	if _, err := c.catalog.Put(ctx, dom); err != nil {
		return Item{}, fmt.Errorf("menudex: store item: %w", err)
	}
	if err := c.indexer.ItemUpdated(ctx, dom); err != nil {
		return Item{}, fmt.Errorf("menudex: index item: %w", err)
	}
	return fromDomain(dom), nil
}

// DeleteItem removes an item from the catalog and from search.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("menudex: %w", err)
	}
	if err := c.indexer.ItemDeleted(ctx, id); err != nil {
		return fmt.Errorf("menudex: remove vector: %w", err)
	}
	return nil
}

// GetItem returns a catalog item.
func (c *Client) GetItem(ctx context.Context, id string) (Item, error) {
	dom, err := c.catalog.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("menudex: %w", err)
	}
	return fromDomain(dom), nil
}

// ListItems returns all catalog items in insertion order.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	doms, err := c.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("menudex: %w", err)
	}
	items := make([]Item, len(doms))
	for i, d := range doms {
		items[i] = fromDomain(d)
	}
	return items, nil
}

// Search embeds the query and returns the topK closest items by cosine
// similarity. topK <= 0 uses the configured default.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	results, err := c.search.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("menudex: search: %w", err)
	}
	hits := make([]Hit, len(results))
	for i := range results {
		r := &results[i]
		hits[i] = Hit{ID: r.ID(), Score: r.Score(), Rank: r.Rank()}
		if item, err := c.catalog.Get(ctx, r.ID()); err == nil {
			hits[i].Name = item.Name()
		}
	}
	return hits, nil
}

// Reconcile syncs the vector store with the full catalog: re-embeds
// changed items, skips unchanged ones, removes orphans. Per-item failures
// land in the report, never fail the batch.
func (c *Client) Reconcile(ctx context.Context) (ReconcileReport, error) {
	items, err := c.catalog.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("menudex: %w", err)
	}
	report, err := c.indexer.ReconcileAll(ctx, items)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("menudex: reconcile: %w", err)
	}
	return ReconcileReport{
		Embedded: report.Embedded(),
		Skipped:  report.Skipped(),
		Failed:   report.FailedIDs(),
		Removed:  report.Removed(),
	}, nil
}

// Usage returns cumulative embedding usage since the client was created.
func (c *Client) Usage() (requests, tokens int64) {
	return c.tracker.Requests(), c.tracker.Tokens()
}

// Healthy reports whether all wired components pass their health checks.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.health.Check(ctx).Status == healthuc.Healthy
}

func toDomain(item Item) (domcat.Item, error) {
	dom, err := domcat.New(item.ID, item.Name, domcat.Fields{
		Category:            item.Category,
		Company:             item.Company,
		ImageURL:            item.ImageURL,
		TextureLevel:        item.TextureLevel,
		TextureNotes:        item.TextureNotes,
		NutritionSummary:    item.NutritionSummary,
		AllergensContains:   item.AllergensContains,
		AllergensMayContain: item.AllergensMayContain,
		Properties:          item.Properties,
		NutritionVector:     item.NutritionVector,
	})
	if err != nil {
		return domcat.Item{}, fmt.Errorf("menudex: invalid item: %w", err)
	}
	return dom, nil
}

func fromDomain(dom domcat.Item) Item {
	return Item{
		ID:                  dom.ID(),
		Name:                dom.Name(),
		Category:            dom.Category(),
		Company:             dom.Company(),
		ImageURL:            dom.ImageURL(),
		TextureLevel:        dom.TextureLevel(),
		TextureNotes:        dom.TextureNotes(),
		NutritionSummary:    dom.NutritionSummary(),
		AllergensContains:   dom.AllergensContains(),
		AllergensMayContain: dom.AllergensMayContain(),
		Properties:          dom.Properties(),
		NutritionVector:     dom.NutritionVector(),
		Fingerprint:         domcat.ItemFingerprint(dom),
	}
}
