package corpus

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors shared by the corpus stores and the services built on them.
var (
	// ErrNotFound indicates a referenced document or snippet does not exist.
	ErrNotFound = errors.New("corpus: not found")

	// ErrConflict indicates a duplicate identity, an ambiguous lookup, or a
	// re-ingestion attempt for a document that already has snippets.
	ErrConflict = errors.New("corpus: conflict")

	// ErrValidation indicates invalid input or configuration, such as a
	// vector whose length does not match its model's dimensions.
	ErrValidation = errors.New("corpus: validation failed")
)

// SourceTextStore persists ingested documents.
type SourceTextStore interface {
	// Create persists a new SourceText. Returns ErrConflict if the id is
	// already taken.
	Create(ctx context.Context, text SourceText) error

	// Find returns the SourceText with the given id. Returns ErrNotFound if
	// no live row matches and ErrConflict if more than one does.
	Find(ctx context.Context, id uuid.UUID) (SourceText, error)
}

// SnippetStore persists the retrievable units of a document.
type SnippetStore interface {
	// CreateBatch inserts one snippet per content string in a single
	// transaction and returns the number of rows created. Returns
	// ErrConflict if the document already has snippets.
	CreateBatch(ctx context.Context, sourceTextID uuid.UUID, contents []string) (int, error)

	// FindBySourceText returns the document's snippets in creation order.
	// An empty slice is not an error.
	FindBySourceText(ctx context.Context, sourceTextID uuid.UUID) ([]Snippet, error)

	// FindByIDs returns the snippets with the given ids. Missing ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Snippet, error)
}
