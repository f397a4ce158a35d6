// Package corpus provides a library for document ingestion and semantic
// snippet retrieval.
//
// A document is registered as a SourceText, chunked into paragraph-level
// snippets, and each snippet is embedded through an external model. Queries
// are answered by embedding the query with the same model and ranking the
// stored vectors by distance.
//
// Basic usage:
//
//	client, err := corpus.New(
//	    corpus.WithSQLite(".corpus/corpus.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	text, err := client.SourceTexts.Create(ctx, service.CreateParams{
//	    Name:    "tenancy-guide",
//	    Content: doc,
//	})
//	count, err := client.Ingestion.CreateSnippets(ctx, text.ID())
//	count, err = client.Ingestion.CreateEmbeddings(ctx, text.ID())
//
//	relevant, err := client.Retriever.FindRelevant(ctx, "how do deposits work", 5)
package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pondside/corpus/application/service"
	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/infrastructure/persistence"
	"github.com/pondside/corpus/infrastructure/provider"
	"github.com/pondside/corpus/internal/config"
	"github.com/pondside/corpus/internal/database"
)

// Client is the main entry point for the corpus library.
//
// Access the subsystems via struct fields:
//
//	client.SourceTexts.Create(ctx, params)
//	client.Ingestion.CreateSnippets(ctx, id)
//	client.Retriever.FindRelevant(ctx, query, max)
type Client struct {
	SourceTexts *service.SourceTexts
	Ingestion   *service.Ingestion
	Retriever   *service.Retriever

	db       database.Database
	registry llm.Registry
	model    llm.ModelSpec
	logger   *slog.Logger
}

// New creates a Client. The model registry is validated here: configuring an
// embedding model that is not registered is a fatal configuration error, not
// a per-request one.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := llm.NewRegistry(cfg.extraModels...)
	if err != nil {
		return nil, fmt.Errorf("build model registry: %w", err)
	}

	model, err := registry.Require(cfg.endpoint.Model())
	if err != nil {
		return nil, fmt.Errorf("validate embedding model: %w", err)
	}

	db, err := database.NewDatabase(context.Background(), cfg.dbURL)
	if err != nil {
		return nil, err
	}

	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := persistence.EnsureModels(context.Background(), db, registry); err != nil {
		_ = db.Close()
		return nil, err
	}

	embeddingStores, err := persistence.BuildEmbeddingStores(db, registry, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	embedder := cfg.embedder
	if embedder == nil {
		embedder = buildEmbedder(cfg.endpoint)
	}

	sourceTextStore := persistence.NewSourceTextStore(db)
	snippetStore := persistence.NewSnippetStore(db)
	embeddingStore := embeddingStores[model.Name()]

	sourceTexts, err := service.NewSourceTexts(sourceTextStore, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ingestion, err := service.NewIngestion(
		sourceTextStore,
		snippetStore,
		embeddingStore,
		embedder,
		model,
		cfg.endpoint.NumParallelTasks(),
		cfg.endpoint.MaxEmbedChars(),
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	retriever, err := service.NewRetriever(
		snippetStore,
		embeddingStore,
		embedder,
		model,
		cfg.searchLimit,
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{
		SourceTexts: sourceTexts,
		Ingestion:   ingestion,
		Retriever:   retriever,
		db:          db,
		registry:    registry,
		model:       model,
		logger:      logger,
	}, nil
}

// NewFromConfig creates a Client from application configuration.
func NewFromConfig(cfg config.AppConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithDatabaseURL(cfg.DBURL()),
		WithEmbeddingEndpoint(cfg.Embedding()),
		WithSearchLimit(cfg.SearchLimit()),
	}

	if cfg.ModelsFile() != "" {
		extras, err := llm.LoadSpecsFile(cfg.ModelsFile())
		if err != nil {
			return nil, err
		}
		base = append(base, WithModels(extras...))
	}

	return New(append(base, opts...)...)
}

func buildEmbedder(endpoint config.Endpoint) search.Embedder {
	switch endpoint.Provider() {
	case config.ProviderOpenAI:
		baseURL := endpoint.BaseURL()
		if baseURL == config.DefaultEmbeddingBaseURL {
			// The ollama default makes no sense for OpenAI; let the SDK
			// use its own.
			baseURL = ""
		}
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  endpoint.APIKey(),
			BaseURL: baseURL,
			Model:   endpoint.Model(),
			Timeout: endpoint.Timeout(),
		})
	default:
		return provider.NewOllamaProvider(
			endpoint.BaseURL(),
			endpoint.Model(),
			provider.WithOllamaTimeout(endpoint.Timeout()),
		)
	}
}

// Model returns the spec of the configured embedding model.
func (c *Client) Model() llm.ModelSpec { return c.model }

// Registry returns the validated model registry.
func (c *Client) Registry() llm.Registry { return c.registry }

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Close releases the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
