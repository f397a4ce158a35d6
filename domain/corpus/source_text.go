// Package corpus provides the domain types for ingested documents and their
// retrievable snippets.
package corpus

import (
	"time"

	"github.com/google/uuid"
)

// SourceText represents a complete ingested document. It is immutable once
// created; removal is a soft delete.
type SourceText struct {
	id          uuid.UUID
	name        string
	filename    string
	url         string
	description string
	content     string
	createdAt   time.Time
	deletedAt   *time.Time
}

// NewSourceText creates a new SourceText with a fresh identifier.
func NewSourceText(name, filename, url, description, content string) SourceText {
	return SourceText{
		id:          uuid.New(),
		name:        name,
		filename:    filename,
		url:         url,
		description: description,
		content:     content,
		createdAt:   time.Now(),
	}
}

// ReconstructSourceText reconstructs a SourceText from persistence.
func ReconstructSourceText(
	id uuid.UUID,
	name, filename, url, description, content string,
	createdAt time.Time,
	deletedAt *time.Time,
) SourceText {
	return SourceText{
		id:          id,
		name:        name,
		filename:    filename,
		url:         url,
		description: description,
		content:     content,
		createdAt:   createdAt,
		deletedAt:   deletedAt,
	}
}

// ID returns the document identifier.
func (s SourceText) ID() uuid.UUID { return s.id }

// Name returns the human-readable document name.
func (s SourceText) Name() string { return s.name }

// Filename returns the original filename, if any.
func (s SourceText) Filename() string { return s.filename }

// URL returns the origin URL, if any.
func (s SourceText) URL() string { return s.url }

// Description returns the document description.
func (s SourceText) Description() string { return s.description }

// Content returns the full document text.
func (s SourceText) Content() string { return s.content }

// CreatedAt returns the creation timestamp.
func (s SourceText) CreatedAt() time.Time { return s.createdAt }

// DeletedAt returns the soft-delete timestamp, or nil if the document is live.
func (s SourceText) DeletedAt() *time.Time { return s.deletedAt }
