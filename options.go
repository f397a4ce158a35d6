package corpus

import (
	"log/slog"

	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL       string
	logger      *slog.Logger
	endpoint    config.Endpoint
	embedder    search.Embedder
	extraModels []llm.ModelSpec
	searchLimit int
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dbURL:       config.NewAppConfig().DBURL(),
		endpoint:    config.NewEndpoint(),
		searchLimit: config.DefaultSearchLimit,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL configures the database from a URL
// (sqlite:///path or postgresql://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithEmbeddingEndpoint configures the external embedding service.
func WithEmbeddingEndpoint(endpoint config.Endpoint) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithEmbedder substitutes a custom search.Embedder, bypassing the endpoint
// configuration. Primarily for tests and alternate providers.
func WithEmbedder(embedder search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = embedder
	}
}

// WithModels registers extra embedding models beyond the builtins.
func WithModels(specs ...llm.ModelSpec) Option {
	return func(c *clientConfig) {
		c.extraModels = append(c.extraModels, specs...)
	}
}

// WithSearchLimit sets the hard ceiling on retrieval result counts.
func WithSearchLimit(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}
