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

// SQL specific to the pgvector extension (setup, index, catalog lookup).
const (
	pgvCreateExtension = `CREATE EXTENSION IF NOT EXISTS vector`

	// <-> is pgvector's L2 distance operator, so the index uses l2 ops.
	pgvCreateIndexTemplate = `
CREATE INDEX IF NOT EXISTS %s_vector_idx
ON %s
USING ivfflat (vector vector_l2_ops)
WITH (lists = 100)`

	// atttypmod carries the declared dimension of a VECTOR column.
	pgvCheckDimensionTemplate = `
SELECT a.atttypmod AS dimension
FROM pg_attribute a
JOIN pg_class c ON a.attrelid = c.oid
WHERE c.relname = '%s'
AND a.attname = 'vector'`
)

// ErrPgvectorInit indicates pgvector initialization failed.
var ErrPgvectorInit = errors.New("initialize pgvector store")

// pgEmbeddingRow is the database row for a vector stored in a VECTOR column.
type pgEmbeddingRow struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetID string            `gorm:"column:snippet_id;size:36;uniqueIndex"`
	LLMName   string            `gorm:"column:llm_name;not null"`
	Vector    database.PgVector `gorm:"column:vector;not null"`
}

// PgvectorEmbeddingStore implements search.EmbeddingStore for one model's
// storage partition on PostgreSQL, using the pgvector extension. Vectors are
// stored in a dimension-typed VECTOR column and ranked database-side with
// the <-> operator, so retrieval never loads the whole partition.
type PgvectorEmbeddingStore struct {
	db     database.Database
	spec   llm.ModelSpec
	logger *slog.Logger
}

// NewPgvectorEmbeddingStore creates the store for the given model, eagerly
// installing the extension, creating the table and index, and verifying the
// declared column dimension against the registry.
func NewPgvectorEmbeddingStore(db database.Database, spec llm.ModelSpec, logger *slog.Logger) (*PgvectorEmbeddingStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	session := db.Session(context.Background())

	if err := session.Exec(pgvCreateExtension).Error; err != nil {
		return nil, fmt.Errorf("%w: create extension: %w", ErrPgvectorInit, err)
	}

	// The dimension is part of the column type, so the DDL is raw SQL.
	createTable := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    snippet_id VARCHAR(36) NOT NULL UNIQUE,
    llm_name VARCHAR(255) NOT NULL,
    vector VECTOR(%d) NOT NULL
)`, spec.TableName(), spec.Dimensions())
	if err := session.Exec(createTable).Error; err != nil {
		return nil, fmt.Errorf("%w: create table %s: %w", ErrPgvectorInit, spec.TableName(), err)
	}

	indexSQL := fmt.Sprintf(pgvCreateIndexTemplate, spec.TableName(), spec.TableName())
	if err := session.Exec(indexSQL).Error; err != nil {
		logger.Warn("create vector index failed (may already exist with different parameters)",
			"table", spec.TableName(), "error", err)
	}

	var dbDimension int
	checkSQL := fmt.Sprintf(pgvCheckDimensionTemplate, spec.TableName())
	result := session.Raw(checkSQL).Scan(&dbDimension)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check dimension: %w", ErrPgvectorInit, result.Error)
	}
	if result.RowsAffected > 0 && dbDimension != spec.Dimensions() {
		return nil, fmt.Errorf("%w: table %s has %d dimensions, model %s declares %d",
			ErrPgvectorInit, spec.TableName(), dbDimension, spec.Name(), spec.Dimensions())
	}

	return &PgvectorEmbeddingStore{
		db:     db,
		spec:   spec,
		logger: logger,
	}, nil
}

// Spec returns the model spec this store serves.
func (s *PgvectorEmbeddingStore) Spec() llm.ModelSpec { return s.spec }

// SaveBatch inserts all embeddings in a single transaction and returns the
// number of rows created. Any vector whose length does not match the model's
// dimensions fails the whole batch with ErrValidation before the transaction
// begins.
func (s *PgvectorEmbeddingStore) SaveBatch(ctx context.Context, embeddings []search.Embedding) (int, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}

	rows := make([]pgEmbeddingRow, len(embeddings))
	for i, emb := range embeddings {
		vector := emb.Vector()
		if len(vector) != s.spec.Dimensions() {
			return 0, fmt.Errorf("%w: snippet %s vector has %d dimensions, model %s requires %d",
				corpus.ErrValidation, emb.SnippetID(), len(vector), s.spec.Name(), s.spec.Dimensions())
		}
		rows[i] = pgEmbeddingRow{
			SnippetID: emb.SnippetID().String(),
			LLMName:   s.spec.Name(),
			Vector:    database.NewPgVector(vector),
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

// Nearest ranks the stored vectors database-side with pgvector's L2 operator
// and returns the k closest matches, ascending distance, ties in insertion
// order.
func (s *PgvectorEmbeddingStore) Nearest(ctx context.Context, query []float64, k int) ([]search.Match, error) {
	if len(query) == 0 || k <= 0 {
		return []search.Match{}, nil
	}

	queryLiteral := database.NewPgVector(query).String()

	var rows []struct {
		SnippetID string  `gorm:"column:snippet_id"`
		Distance  float64 `gorm:"column:distance"`
	}
	err := s.db.Session(ctx).
		Table(s.spec.TableName()).
		Select("snippet_id, vector <-> ? AS distance", queryLiteral).
		Order("distance ASC, id ASC").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank embeddings for %s: %w", s.spec.Name(), err)
	}

	matches := make([]search.Match, 0, len(rows))
	for _, row := range rows {
		snippetID, err := uuid.Parse(row.SnippetID)
		if err != nil {
			return nil, fmt.Errorf("parse snippet id %q: %w", row.SnippetID, err)
		}
		matches = append(matches, search.NewMatch(snippetID, row.Distance))
	}
	return matches, nil
}

// All returns every stored embedding for this model in insertion order.
func (s *PgvectorEmbeddingStore) All(ctx context.Context) ([]search.Embedding, error) {
	var rows []pgEmbeddingRow
	err := s.db.Session(ctx).
		Table(s.spec.TableName()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load embeddings for %s: %w", s.spec.Name(), err)
	}

	embeddings := make([]search.Embedding, 0, len(rows))
	for _, row := range rows {
		snippetID, err := uuid.Parse(row.SnippetID)
		if err != nil {
			return nil, fmt.Errorf("parse snippet id %q: %w", row.SnippetID, err)
		}
		embeddings = append(embeddings, search.NewEmbedding(snippetID, row.Vector.Floats()))
	}
	return embeddings, nil
}
