// Package persistence provides GORM-backed stores for the corpus.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pondside/corpus/domain/corpus"
)

// SourceTextModel is the database row for an ingested document.
type SourceTextModel struct {
	ID          string     `gorm:"column:id;primaryKey;size:36"`
	Name        string     `gorm:"column:name;not null"`
	Filename    string     `gorm:"column:filename"`
	URL         string     `gorm:"column:url"`
	Description string     `gorm:"column:description"`
	Content     string     `gorm:"column:content;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index"`
}

// TableName returns the table name for SourceTextModel.
func (SourceTextModel) TableName() string { return "llm_source_texts" }

// SnippetModel is the database row for a retrievable text unit. Position is
// the snippet's zero-based index within its document; batch inserts can share
// a created_at timestamp, so document order needs its own column.
type SnippetModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	Content      string    `gorm:"column:content;not null"`
	SourceTextID string    `gorm:"column:source_text_id;size:36;not null;index"`
	Position     int       `gorm:"column:position;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName returns the table name for SnippetModel.
func (SnippetModel) TableName() string { return "llm_snippets" }

// LLMModel records an embedding model the corpus has used, so stored vectors
// stay linked to the model that produced them.
type LLMModel struct {
	Name       string    `gorm:"column:name;primaryKey"`
	Dimensions int       `gorm:"column:dimensions;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

// TableName returns the table name for LLMModel.
func (LLMModel) TableName() string { return "llm_models" }

// Float64Slice is a custom type for JSON serialization of []float64 vectors.
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	return json.Marshal([]float64(f))
}

// EmbeddingRow is the database row for a stored vector. The same struct maps
// to one table per registered model.
type EmbeddingRow struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetID string       `gorm:"column:snippet_id;size:36;uniqueIndex"`
	LLMName   string       `gorm:"column:llm_name;not null"`
	Vector    Float64Slice `gorm:"column:vector;type:json;not null"`
}

// sourceTextMapper maps between corpus.SourceText and SourceTextModel.
type sourceTextMapper struct{}

func (sourceTextMapper) ToDomain(m SourceTextModel) (corpus.SourceText, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return corpus.SourceText{}, fmt.Errorf("parse source text id %q: %w", m.ID, err)
	}
	return corpus.ReconstructSourceText(
		id, m.Name, m.Filename, m.URL, m.Description, m.Content, m.CreatedAt, m.DeletedAt,
	), nil
}

func (sourceTextMapper) ToModel(t corpus.SourceText) SourceTextModel {
	return SourceTextModel{
		ID:          t.ID().String(),
		Name:        t.Name(),
		Filename:    t.Filename(),
		URL:         t.URL(),
		Description: t.Description(),
		Content:     t.Content(),
		CreatedAt:   t.CreatedAt(),
		DeletedAt:   t.DeletedAt(),
	}
}

// snippetMapper maps between corpus.Snippet and SnippetModel.
type snippetMapper struct{}

func (snippetMapper) ToDomain(m SnippetModel) (corpus.Snippet, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return corpus.Snippet{}, fmt.Errorf("parse snippet id %q: %w", m.ID, err)
	}
	sourceTextID, err := uuid.Parse(m.SourceTextID)
	if err != nil {
		return corpus.Snippet{}, fmt.Errorf("parse source text id %q: %w", m.SourceTextID, err)
	}
	return corpus.ReconstructSnippet(id, m.Content, sourceTextID, m.CreatedAt), nil
}

func (snippetMapper) ToModel(s corpus.Snippet) SnippetModel {
	return SnippetModel{
		ID:           s.ID().String(),
		Content:      s.Content(),
		SourceTextID: s.SourceTextID().String(),
		CreatedAt:    s.CreatedAt(),
	}
}
