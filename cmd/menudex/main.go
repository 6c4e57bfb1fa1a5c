package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/config"
	"github.com/kailas-cloud/menudex/internal/db"
	dbRedis "github.com/kailas-cloud/menudex/internal/db/redis"
	"github.com/kailas-cloud/menudex/internal/domain"
	logpkg "github.com/kailas-cloud/menudex/internal/logger"
	"github.com/kailas-cloud/menudex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/menudex/internal/repository/catalog"
	"github.com/kailas-cloud/menudex/internal/repository/embcache"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/menudex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/menudex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/menudex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/menudex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/menudex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/menudex/internal/usecase/search"
	"github.com/kailas-cloud/menudex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting menudex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Create database store based on driver. The memory driver keeps the
	// vector index in-process and needs no connection.
	var store db.Store
	switch cfg.Database.Driver {
	case "redis", "valkey":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = s
	case "memory":
		logger.Info("Using in-memory vector store")
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Usage tracker shared by the embedder chain and the usage endpoint.
	tracker := embeddinguc.NewTracker(cfg.Embedding.CostPerMillionTokens)

	embedder := buildEmbedder(cfg, store, tracker, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache && store != nil),
	)

	// Vector store
	var vectors indexeruc.VectorStore
	if store != nil {
		vectors = vector.NewRedis(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions)
	} else {
		vectors = vector.NewMemory(cfg.Embedding.Dimensions)
	}

	// Catalog repository, optionally seeded from a fixture.
	catalog := catalogrepo.New()
	if cfg.Catalog.SeedPath != "" {
		n, err := catalog.LoadSeed(ctx, cfg.Catalog.SeedPath)
		if err != nil {
			logger.Fatal("Failed to load catalog seed", zap.Error(err))
		}
		logger.Info("Catalog seeded", zap.Int("items", n), zap.String("path", cfg.Catalog.SeedPath))
	}

	// Use case services
	idxSvc := indexeruc.New(vectors, embedder, logger)
	if cfg.Embedding.ZeroVectorOnFailure {
		idxSvc = idxSvc.WithZeroVectorFallback(cfg.Embedding.Dimensions)
	}
	searchSvc := searchuc.New(vectors, embedder).
		WithLimits(cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), vectors)

	// Bring the index in line with the seeded catalog before serving.
	if cfg.Catalog.ReconcileOnStart {
		items, err := catalog.List(ctx)
		if err != nil {
			logger.Fatal("Failed to list catalog", zap.Error(err))
		}
		report, err := idxSvc.ReconcileAll(ctx, items)
		if err != nil {
			logger.Fatal("Startup reconcile failed", zap.Error(err))
		}
		if failed := report.FailedIDs(); len(failed) > 0 {
			logger.Warn("Some items failed to index on startup", zap.Strings("ids", failed))
		}
	}

	server := chiTransport.NewServer(catalog, idxSvc, searchSvc, healthSvc, tracker, logger)
	handler := server.Router(cfg.Auth.APIKeys,
		wideEventMiddleware(logger),
		metrics.Middleware(),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Retrying -> Instrumented
func buildEmbedder(
	cfg config.Config,
	store db.Store,
	tracker *embeddinguc.Tracker,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxInputBytes: cfg.Embedding.MaxInputBytes,
		Provider:      "openai",
		Logger:        logger,
	})

	// Cached — only with a shared store; the cache key includes the model.
	var embedder domain.Embedder = base
	if store != nil && cfg.Embedding.Cache {
		embedder = embcache.New(base, store, cfg.Storage.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	}

	// Retrying — timeouts and rate limits only
	embedder = embeddinguc.NewRetryingEmbedder(
		embedder, cfg.Embedding.MaxRetries, embeddinguc.DefaultBaseBackoff, logger,
	)

	// Instrumented (usage + metrics) — outermost so retries count once
	return embeddinguc.NewInstrumentedEmbedder(
		embedder, "openai", cfg.Embedding.Model, tracker, logger,
	)
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
