package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/domain"
	catalogrepo "github.com/kailas-cloud/menudex/internal/repository/catalog"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
	"github.com/kailas-cloud/menudex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/menudex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/menudex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/menudex/internal/usecase/search"
)

// stubEmbedder returns canned vectors per document text; unknown texts get
// the default vector. err, when set, fails every call.
type stubEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	defaultVec []float32
	err        error
	calls      int
}

func newStubEmbedder(dim int) *stubEmbedder {
	v := make([]float32, dim)
	v[0] = 1
	return &stubEmbedder{vectors: make(map[string][]float32), defaultVec: v}
}

func (m *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v, TotalTokens: 10}, nil
	}
	return domain.EmbeddingResult{Embedding: m.defaultVec, TotalTokens: 10}, nil
}

func (m *stubEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *stubEmbedder) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type testEnv struct {
	router  http.Handler
	embed   *stubEmbedder
	catalog *catalogrepo.Repo
	vectors *vector.Memory
	tracker *embedding.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	embed := newStubEmbedder(3)
	vectors := vector.NewMemory(3)
	repo := catalogrepo.New()
	tracker := embedding.NewTracker(0.02)

	idx := indexeruc.New(vectors, embed, logger)
	search := searchuc.New(vectors, embed)
	health := healthuc.New(nil, nil, vectors)

	srv := NewServer(repo, idx, search, health, tracker, logger)
	return &testEnv{
		router:  srv.Router(nil),
		embed:   embed,
		catalog: repo,
		vectors: vectors,
		tracker: tracker,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}
