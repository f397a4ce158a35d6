package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/internal/database"
)

// createBatchSize caps the number of rows per INSERT statement.
const createBatchSize = 500

// SnippetStore implements corpus.SnippetStore using GORM.
type SnippetStore struct {
	db     database.Database
	mapper snippetMapper
}

// NewSnippetStore creates a new SnippetStore.
func NewSnippetStore(db database.Database) SnippetStore {
	return SnippetStore{db: db}
}

// CreateBatch inserts one snippet per content string in a single transaction.
// A document that already has snippets fails with ErrConflict; re-ingestion
// is rejected, never silently duplicated.
func (s SnippetStore) CreateBatch(ctx context.Context, sourceTextID uuid.UUID, contents []string) (int, error) {
	if len(contents) == 0 {
		return 0, nil
	}

	models := make([]SnippetModel, len(contents))
	for i, content := range contents {
		models[i] = s.mapper.ToModel(corpus.NewSnippet(content, sourceTextID))
		models[i].Position = i
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// Under READ COMMITTED two concurrent ingestions could both count
		// zero, so the count-then-insert takes a row lock on the source
		// text. SQLite has a single writer and rejects FOR UPDATE.
		if s.db.IsPostgres() {
			var locked SourceTextModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", sourceTextID.String()).
				Limit(1).
				Find(&locked).Error
			if err != nil {
				return fmt.Errorf("lock source text: %w", err)
			}
		}

		var existing int64
		if err := tx.Model(&SnippetModel{}).
			Where("source_text_id = ?", sourceTextID.String()).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("count existing snippets: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: source text %s already has %d snippets", corpus.ErrConflict, sourceTextID, existing)
		}

		if err := tx.CreateInBatches(models, createBatchSize).Error; err != nil {
			return fmt.Errorf("insert snippets: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(models), nil
}

// FindBySourceText returns the document's snippets in document order.
func (s SnippetStore) FindBySourceText(ctx context.Context, sourceTextID uuid.UUID) ([]corpus.Snippet, error) {
	var models []SnippetModel
	err := s.db.Session(ctx).
		Where("source_text_id = ?", sourceTextID.String()).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find snippets: %w", err)
	}

	return s.toDomain(models)
}

// FindByIDs returns the snippets with the given ids.
func (s SnippetStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]corpus.Snippet, error) {
	if len(ids) == 0 {
		return []corpus.Snippet{}, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	var models []SnippetModel
	err := s.db.Session(ctx).
		Where("id IN ?", strIDs).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find snippets by ids: %w", err)
	}

	return s.toDomain(models)
}

func (s SnippetStore) toDomain(models []SnippetModel) ([]corpus.Snippet, error) {
	snippets := make([]corpus.Snippet, len(models))
	for i, model := range models {
		snippet, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, err
		}
		snippets[i] = snippet
	}
	return snippets, nil
}
