package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/internal/database"
)

// EmbeddingStore implements search.EmbeddingStore for one model's storage
// partition on SQLite, serializing vectors into a JSON column and ranking in
// memory. PostgreSQL uses PgvectorEmbeddingStore instead. Each registered
// model writes to its own dimension-matched table; GORM caches schemas by
// type, so the shared EmbeddingRow struct is always addressed through an
// explicit .Table() call.
type EmbeddingStore struct {
	db     database.Database
	spec   llm.ModelSpec
	logger *slog.Logger
}

// NewEmbeddingStore creates the store for the given model, creating its
// table eagerly.
func NewEmbeddingStore(db database.Database, spec llm.ModelSpec, logger *slog.Logger) (*EmbeddingStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snippet_id VARCHAR(36) NOT NULL,
    llm_name VARCHAR(255) NOT NULL,
    vector JSON NOT NULL
)`, spec.TableName()),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_snippet_id ON %s (snippet_id)`,
			spec.TableName(), spec.TableName()),
	}
	for _, stmt := range stmts {
		if err := db.Session(context.Background()).Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("create table %s: %w", spec.TableName(), err)
		}
	}

	return &EmbeddingStore{
		db:     db,
		spec:   spec,
		logger: logger,
	}, nil
}

// Spec returns the model spec this store serves.
func (s *EmbeddingStore) Spec() llm.ModelSpec { return s.spec }

// SaveBatch inserts all embeddings in a single transaction and returns the
// number of rows created. Any vector whose length does not match the model's
// dimensions fails the whole batch with ErrValidation before the transaction
// begins.
func (s *EmbeddingStore) SaveBatch(ctx context.Context, embeddings []search.Embedding) (int, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}

	rows := make([]EmbeddingRow, len(embeddings))
	for i, emb := range embeddings {
		vector := emb.Vector()
		if len(vector) != s.spec.Dimensions() {
			return 0, fmt.Errorf("%w: snippet %s vector has %d dimensions, model %s requires %d",
				corpus.ErrValidation, emb.SnippetID(), len(vector), s.spec.Name(), s.spec.Dimensions())
		}
		rows[i] = EmbeddingRow{
			SnippetID: emb.SnippetID().String(),
			LLMName:   s.spec.Name(),
			Vector:    Float64Slice(vector),
		}
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Table(s.spec.TableName()).CreateInBatches(rows, createBatchSize).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: embeddings already exist for model %s", corpus.ErrConflict, s.spec.Name())
		}
		return 0, fmt.Errorf("save embeddings for %s: %w", s.spec.Name(), err)
	}

	return len(rows), nil
}

// Nearest ranks the stored vectors in memory; the JSON column cannot be
// ranked database-side.
func (s *EmbeddingStore) Nearest(ctx context.Context, query []float64, k int) ([]search.Match, error) {
	stored, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return search.TopKNearest(query, stored, k), nil
}

// All returns every stored embedding for this model in insertion order.
// Empty vectors are skipped with a warning; they must never rank.
func (s *EmbeddingStore) All(ctx context.Context) ([]search.Embedding, error) {
	var rows []EmbeddingRow
	err := s.db.Session(ctx).
		Table(s.spec.TableName()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load embeddings for %s: %w", s.spec.Name(), err)
	}

	embeddings := make([]search.Embedding, 0, len(rows))
	for _, row := range rows {
		if len(row.Vector) == 0 {
			s.logger.Warn("skipping empty embedding", "snippet_id", row.SnippetID, "model", s.spec.Name())
			continue
		}
		snippetID, err := uuid.Parse(row.SnippetID)
		if err != nil {
			return nil, fmt.Errorf("parse snippet id %q: %w", row.SnippetID, err)
		}
		embeddings = append(embeddings, search.NewEmbedding(snippetID, row.Vector))
	}
	return embeddings, nil
}
