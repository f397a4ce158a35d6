package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/internal/database"
)

// SourceTextStore implements corpus.SourceTextStore using GORM.
type SourceTextStore struct {
	db     database.Database
	mapper sourceTextMapper
}

// NewSourceTextStore creates a new SourceTextStore.
func NewSourceTextStore(db database.Database) SourceTextStore {
	return SourceTextStore{db: db}
}

// Create persists a new SourceText.
func (s SourceTextStore) Create(ctx context.Context, text corpus.SourceText) error {
	model := s.mapper.ToModel(text)
	err := s.db.Session(ctx).Create(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: source text %s", corpus.ErrConflict, text.ID())
		}
		return fmt.Errorf("create source text: %w", err)
	}
	return nil
}

// Find returns the live SourceText with the given id. Zero matches is
// ErrNotFound; more than one is ErrConflict.
func (s SourceTextStore) Find(ctx context.Context, id uuid.UUID) (corpus.SourceText, error) {
	var models []SourceTextModel
	err := s.db.Session(ctx).
		Where("id = ? AND deleted_at IS NULL", id.String()).
		Find(&models).Error
	if err != nil {
		return corpus.SourceText{}, fmt.Errorf("find source text: %w", err)
	}

	switch len(models) {
	case 0:
		return corpus.SourceText{}, fmt.Errorf("%w: source text %s", corpus.ErrNotFound, id)
	case 1:
		return s.mapper.ToDomain(models[0])
	default:
		return corpus.SourceText{}, fmt.Errorf("%w: %d source texts match id %s", corpus.ErrConflict, len(models), id)
	}
}
