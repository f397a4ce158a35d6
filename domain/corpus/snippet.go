package corpus

import (
	"time"

	"github.com/google/uuid"
)

// Snippet is a paragraph-level substring of a SourceText, the unit of
// retrieval. A snippet belongs to exactly one SourceText and its content is
// never mutated after creation.
type Snippet struct {
	id           uuid.UUID
	content      string
	sourceTextID uuid.UUID
	createdAt    time.Time
}

// NewSnippet creates a new Snippet owned by the given SourceText.
func NewSnippet(content string, sourceTextID uuid.UUID) Snippet {
	return Snippet{
		id:           uuid.New(),
		content:      content,
		sourceTextID: sourceTextID,
		createdAt:    time.Now(),
	}
}

// ReconstructSnippet reconstructs a Snippet from persistence.
func ReconstructSnippet(id uuid.UUID, content string, sourceTextID uuid.UUID, createdAt time.Time) Snippet {
	return Snippet{
		id:           id,
		content:      content,
		sourceTextID: sourceTextID,
		createdAt:    createdAt,
	}
}

// ID returns the snippet identifier.
func (s Snippet) ID() uuid.UUID { return s.id }

// Content returns the snippet text.
func (s Snippet) Content() string { return s.content }

// SourceTextID returns the identifier of the owning SourceText.
func (s Snippet) SourceTextID() uuid.UUID { return s.sourceTextID }

// CreatedAt returns the creation timestamp.
func (s Snippet) CreatedAt() time.Time { return s.createdAt }
