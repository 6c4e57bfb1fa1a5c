package menudex

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/menudex/internal/domain"
)

type clientConfig struct {
	driver     string // "memory", "redis", "valkey"
	addrs      []string
	password   string
	keyPrefix  string
	dimensions int

	embedder      domain.Embedder // overrides the OpenAI provider when set
	openaiAPIKey  string
	openaiBaseURL string
	model         string
	maxRetries    int

	defaultTopK int
	maxTopK     int
	degraded    bool

	logger *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithMemory selects the in-process vector store. dim pins the expected
// embedding dimensionality.
func WithMemory(dim int) Option {
	return func(c *clientConfig) {
		c.driver = "memory"
		c.dimensions = dim
	}
}

// WithRedis selects a Redis-backed vector store.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithValkey selects a Valkey-backed vector store.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithKeyPrefix namespaces all stored keys (default "menudex:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithOpenAI configures the OpenAI-compatible embedding provider.
func WithOpenAI(apiKey, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.openaiAPIKey = apiKey
		c.model = model
		c.dimensions = dimensions
	}
}

// WithBaseURL points the provider at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.openaiBaseURL = url }
}

// WithEmbedder replaces the provider entirely. Useful for tests and for
// providers outside the OpenAI API family.
func WithEmbedder(e domain.Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithTopKLimits overrides the search defaults.
func WithTopKLimits(defaultTopK, maxTopK int) Option {
	return func(c *clientConfig) {
		c.defaultTopK = defaultTopK
		c.maxTopK = maxTopK
	}
}

// WithZeroVectorFallback indexes zero vectors when the provider fails
// instead of surfacing the error. Opt-in.
func WithZeroVectorFallback() Option {
	return func(c *clientConfig) { c.degraded = true }
}

// WithLogger sets the logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
