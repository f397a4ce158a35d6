// Package service provides the application services wiring the corpus
// stores, the chunker, and the embedding provider together.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/infrastructure/chunking"
)

// Ingestion sequences document ingestion: chunk a SourceText into snippets,
// then embed each snippet and persist the vectors under the configured
// model. The two stages are independently invokable, so "snippets exist,
// embeddings do not yet" is a valid resumable state.
type Ingestion struct {
	sourceTexts   corpus.SourceTextStore
	snippets      corpus.SnippetStore
	embeddings    search.EmbeddingStore
	embedder      search.Embedder
	model         llm.ModelSpec
	parallelism   int
	maxEmbedChars int
	logger        *slog.Logger
}

// NewIngestion creates an Ingestion service.
func NewIngestion(
	sourceTexts corpus.SourceTextStore,
	snippets corpus.SnippetStore,
	embeddings search.EmbeddingStore,
	embedder search.Embedder,
	model llm.ModelSpec,
	parallelism int,
	maxEmbedChars int,
	logger *slog.Logger,
) (*Ingestion, error) {
	if sourceTexts == nil || snippets == nil || embeddings == nil {
		return nil, fmt.Errorf("NewIngestion: nil store")
	}
	if embedder == nil {
		return nil, fmt.Errorf("NewIngestion: nil embedder")
	}
	if parallelism <= 0 {
		parallelism = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestion{
		sourceTexts:   sourceTexts,
		snippets:      snippets,
		embeddings:    embeddings,
		embedder:      embedder,
		model:         model,
		parallelism:   parallelism,
		maxEmbedChars: maxEmbedChars,
		logger:        logger,
	}, nil
}

// CreateSnippets chunks the document into paragraphs and persists them
// atomically, returning the number of snippets created. Re-running for a
// document that already has snippets fails with ErrConflict.
func (s *Ingestion) CreateSnippets(ctx context.Context, sourceTextID uuid.UUID) (int, error) {
	text, err := s.sourceTexts.Find(ctx, sourceTextID)
	if err != nil {
		return 0, err
	}

	paragraphs := chunking.Paragraphs(text.Content())
	if len(paragraphs) == 0 {
		s.logger.Warn("source text has no paragraphs", "source_text_id", sourceTextID)
		return 0, nil
	}

	count, err := s.snippets.CreateBatch(ctx, sourceTextID, paragraphs)
	if err != nil {
		return 0, err
	}

	s.logger.Info("snippets created", "source_text_id", sourceTextID, "count", count)
	return count, nil
}

// CreateEmbeddings embeds every snippet of the document and persists all
// vectors in one atomic batch keyed by the configured model. Per-snippet
// embedding calls run concurrently up to the configured parallelism; the
// first upstream failure cancels the rest and nothing is persisted. Snippets
// for which the service produced no embedding are skipped, not stored as
// zero vectors.
func (s *Ingestion) CreateEmbeddings(ctx context.Context, sourceTextID uuid.UUID) (int, error) {
	if _, err := s.sourceTexts.Find(ctx, sourceTextID); err != nil {
		return 0, err
	}

	snippets, err := s.snippets.FindBySourceText(ctx, sourceTextID)
	if err != nil {
		return 0, err
	}
	if len(snippets) == 0 {
		return 0, fmt.Errorf("%w: source text %s has no snippets to embed", corpus.ErrValidation, sourceTextID)
	}

	vectors := make([][]float64, len(snippets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.parallelism)

	for i, snippet := range snippets {
		i, snippet := i, snippet
		group.Go(func() error {
			vector, err := s.embedder.Embed(groupCtx, s.truncate(snippet.Content()))
			if err != nil {
				return fmt.Errorf("embed snippet %s: %w", snippet.ID(), err)
			}
			vectors[i] = vector
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	embeddings := make([]search.Embedding, 0, len(snippets))
	for i, snippet := range snippets {
		if len(vectors[i]) == 0 {
			s.logger.Warn("no embedding produced, skipping snippet",
				"snippet_id", snippet.ID(), "model", s.model.Name())
			continue
		}
		embeddings = append(embeddings, search.NewEmbedding(snippet.ID(), vectors[i]))
	}

	count, err := s.embeddings.SaveBatch(ctx, embeddings)
	if err != nil {
		return 0, err
	}

	s.logger.Info("embeddings created",
		"source_text_id", sourceTextID, "model", s.model.Name(), "count", count)
	return count, nil
}

// truncate bounds snippet text at embed time. Stored content is untouched.
// The cut backs up to a rune boundary so the service never receives invalid
// UTF-8.
func (s *Ingestion) truncate(text string) string {
	if s.maxEmbedChars <= 0 || len(text) <= s.maxEmbedChars {
		return text
	}
	cut := s.maxEmbedChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
