package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pondside/corpus/domain/corpus"
)

// SourceTexts registers documents for later ingestion.
type SourceTexts struct {
	store  corpus.SourceTextStore
	logger *slog.Logger
}

// NewSourceTexts creates a SourceTexts service.
func NewSourceTexts(store corpus.SourceTextStore, logger *slog.Logger) (*SourceTexts, error) {
	if store == nil {
		return nil, fmt.Errorf("NewSourceTexts: nil store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceTexts{store: store, logger: logger}, nil
}

// CreateParams holds the fields of a new SourceText.
type CreateParams struct {
	Name        string
	Filename    string
	URL         string
	Description string
	Content     string
}

// Create registers a new SourceText.
func (s *SourceTexts) Create(ctx context.Context, params CreateParams) (corpus.SourceText, error) {
	if params.Name == "" {
		return corpus.SourceText{}, fmt.Errorf("%w: source text name is required", corpus.ErrValidation)
	}
	if params.Content == "" {
		return corpus.SourceText{}, fmt.Errorf("%w: source text content is required", corpus.ErrValidation)
	}

	text := corpus.NewSourceText(params.Name, params.Filename, params.URL, params.Description, params.Content)
	if err := s.store.Create(ctx, text); err != nil {
		return corpus.SourceText{}, err
	}

	s.logger.Info("source text created", "source_text_id", text.ID(), "name", text.Name())
	return text, nil
}
