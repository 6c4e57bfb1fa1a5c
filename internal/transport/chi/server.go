// Package chi exposes the HTTP API: catalog item CRUD, semantic search,
// full-catalog reconciliation, usage, health and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/domain"
	logpkg "github.com/kailas-cloud/menudex/internal/logger"
	catalogrepo "github.com/kailas-cloud/menudex/internal/repository/catalog"
	"github.com/kailas-cloud/menudex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/menudex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/menudex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/menudex/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeItemNotFound      = "item_not_found"
	codeRateLimited       = "rate_limited"
	codeProviderTimeout   = "provider_timeout"
	codeProviderInput     = "provider_invalid_input"
	codeProviderDown      = "provider_unavailable"
	codeDimMismatch       = "vector_dim_mismatch"
	codeInconsistentState = "inconsistent_state"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the catalog search API.
type Server struct {
	catalog       *catalogrepo.Repo
	indexer       *indexeruc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	usage         *embedding.Tracker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *catalogrepo.Repo,
	indexer *indexeruc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	usage *embedding.Tracker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog: catalog,
		indexer: indexer,
		search:  search,
		health:  health,
		usage:   usage,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrProviderRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrProviderInvalidInput, http.StatusBadRequest, codeProviderInput),
		sentinelHandler(domain.ErrProviderTimeout, http.StatusBadGateway, codeProviderTimeout),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, codeProviderDown),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeDimMismatch),
		sentinelHandler(domain.ErrInconsistentState, http.StatusInternalServerError, codeInconsistentState),
	}
	return s
}

// Router assembles the chi mux with middleware and all routes.
func (s *Server) Router(apiKeys []string, extra ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.withLogger)
	for _, m := range extra {
		r.Use(m)
	}
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.SearchItems)
		r.Post("/reconcile", s.Reconcile)
		r.Get("/usage", s.GetUsage)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.ListItems)
			r.Post("/", s.CreateItem)
			r.Get("/{id}", s.GetItem)
			r.Put("/{id}", s.UpdateItem)
			r.Delete("/{id}", s.DeleteItem)
		})
	})

	return r
}

// SearchItems handles POST /api/search.
func (s *Server) SearchItems(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}
	if req.TopK < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be positive")
		return
	}

	results, err := s.search.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	// Decorate hits with catalog names; a hit whose item vanished
	// mid-request still returns its id.
	names := make(map[string]string, len(results))
	for i := range results {
		if item, err := s.catalog.Get(r.Context(), results[i].ID()); err == nil {
			names[item.ID()] = item.Name()
		}
	}

	topK := req.TopK
	if topK == 0 {
		topK = len(results)
	}
	writeJSON(w, http.StatusOK, searchResultsToResponse(results, names, topK))
}

// CreateItem handles POST /api/items. The item id is optional; when
// absent the store assigns one. The embedding is generated synchronously:
// a provider failure keeps the item in the catalog but out of search, and
// the error is surfaced so the caller can retry with a PUT.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := req.ID
	if id == "" {
		id = catalogrepo.NewID()
	}

	item, err := itemFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if _, err := s.catalog.Put(r.Context(), item); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.indexer.ItemCreated(r.Context(), item); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/items/"+item.ID())
	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// GetItem handles GET /api/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// ListItems handles GET /api/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := itemListResponse{Items: make([]itemResponse, len(items)), Total: len(items)}
	for i, item := range items {
		resp.Items[i] = itemToResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateItem handles PUT /api/items/{id}. Re-embedding happens only when
// the update changes the canonical document; image or other cosmetic
// changes cost zero provider calls.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.catalog.Get(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := itemFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if _, err := s.catalog.Put(r.Context(), item); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.indexer.ItemUpdated(r.Context(), item); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /api/items/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.catalog.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.indexer.ItemDeleted(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reconcile handles POST /api/reconcile: a full catalog sync against the
// vector store. Always returns 200 with the per-item report; individual
// failures are listed, never fatal.
func (s *Server) Reconcile(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	report, err := s.indexer.ReconcileAll(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportToResponse(report))
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, usageResponse{
		EmbeddingRequests: s.usage.Requests(),
		Tokens:            s.usage.Tokens(),
		EstimatedCostUSD:  s.usage.EstimatedCost(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// withLogger seeds the request context with the server logger. Middleware
// further down the chain (the wide-event logger in main) replaces it with
// a request-scoped one.
func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logpkg.ContextWithLogger(r.Context(), s.logger)))
	})
}

// recoverer converts panics into JSON 500s instead of chi's plain text.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrProviderTimeout,
		domain.ErrProviderRateLimited,
		domain.ErrProviderInvalidInput,
		domain.ErrProviderUnavailable,
		domain.ErrVectorDimMismatch,
		domain.ErrInconsistentState,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	if domain.IsProviderError(err) {
		logger.Warn("embedding provider error", zap.Error(err))
	} else {
		logger.Warn("domain error", zap.Error(err))
	}
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
