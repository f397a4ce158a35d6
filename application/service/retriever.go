package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
)

// Retriever answers "which snippets are most similar to this query". It
// embeds the query with the same model used to embed the corpus; mismatched
// models produce meaningless distances.
type Retriever struct {
	snippets   corpus.SnippetStore
	embeddings search.EmbeddingStore
	embedder   search.Embedder
	model      llm.ModelSpec
	maxResults int
	logger     *slog.Logger
}

// NewRetriever creates a Retriever. maxResults is the hard ceiling applied
// to every query regardless of what the caller asks for.
func NewRetriever(
	snippets corpus.SnippetStore,
	embeddings search.EmbeddingStore,
	embedder search.Embedder,
	model llm.ModelSpec,
	maxResults int,
	logger *slog.Logger,
) (*Retriever, error) {
	if snippets == nil || embeddings == nil {
		return nil, fmt.Errorf("NewRetriever: nil store")
	}
	if embedder == nil {
		return nil, fmt.Errorf("NewRetriever: nil embedder")
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		snippets:   snippets,
		embeddings: embeddings,
		embedder:   embedder,
		model:      model,
		maxResults: maxResults,
		logger:     logger,
	}, nil
}

// FindRelevant returns the contents of the snippets most similar to the
// query, ordered by ascending L2 distance (ties keep insertion order). max
// is clamped to the service ceiling; a corpus smaller than max returns
// everything.
func (r *Retriever) FindRelevant(ctx context.Context, query string, max int) ([]string, error) {
	if max <= 0 || max > r.maxResults {
		max = r.maxResults
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("%w: query produced no embedding", corpus.ErrValidation)
	}

	matches, err := r.embeddings.Nearest(ctx, queryVector, max)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []string{}, nil
	}

	ids := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		ids[i] = m.SnippetID()
	}

	snippets, err := r.snippets.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]corpus.Snippet, len(snippets))
	for _, s := range snippets {
		byID[s.ID()] = s
	}

	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		snippet, ok := byID[m.SnippetID()]
		if !ok {
			// Embedding without a live snippet; skip rather than fail.
			r.logger.Warn("embedding references missing snippet", "snippet_id", m.SnippetID())
			continue
		}
		contents = append(contents, snippet.Content())
	}

	return contents, nil
}
