package search

import (
	"context"

	"github.com/google/uuid"
)

// Embedding pairs a snippet with its vector under a specific model. The
// vector length always matches the model's declared dimensions.
type Embedding struct {
	snippetID uuid.UUID
	vector    []float64
}

// NewEmbedding creates a new Embedding.
func NewEmbedding(snippetID uuid.UUID, vector []float64) Embedding {
	vec := make([]float64, len(vector))
	copy(vec, vector)
	return Embedding{
		snippetID: snippetID,
		vector:    vec,
	}
}

// SnippetID returns the identifier of the embedded snippet.
func (e Embedding) SnippetID() uuid.UUID { return e.snippetID }

// Vector returns the embedding vector (copy).
func (e Embedding) Vector() []float64 {
	vec := make([]float64, len(e.vector))
	copy(vec, e.vector)
	return vec
}

// EmbeddingStore persists embeddings for a single model's storage partition.
// Implementations are obtained from the model registry; one store per
// registered model.
type EmbeddingStore interface {
	// SaveBatch inserts all embeddings in a single transaction and returns
	// the number of rows created. A vector whose length does not match the
	// model's dimensions fails the whole batch.
	SaveBatch(ctx context.Context, embeddings []Embedding) (int, error)

	// All returns every stored embedding for this model in insertion order.
	All(ctx context.Context) ([]Embedding, error)

	// Nearest returns the k stored embeddings closest to the query vector by
	// L2 distance, ascending, with ties kept in insertion order. Where the
	// backend can rank vectors itself the ranking runs in the database;
	// otherwise it runs in memory over All.
	Nearest(ctx context.Context, query []float64, k int) ([]Match, error)
}
