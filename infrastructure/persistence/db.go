package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/internal/database"
)

// AutoMigrate runs GORM auto migration for the fixed-schema tables. The
// per-model embedding tables are created by their stores.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(
		&SourceTextModel{},
		&SnippetModel{},
		&LLMModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureModels upserts one llm_models row per registered model, so embedding
// rows always reference a recorded model.
func EnsureModels(ctx context.Context, db database.Database, registry llm.Registry) error {
	for _, spec := range registry.All() {
		row := LLMModel{
			Name:       spec.Name(),
			Dimensions: spec.Dimensions(),
			CreatedAt:  time.Now(),
		}
		err := db.Session(ctx).
			Where("name = ?", spec.Name()).
			FirstOrCreate(&row).Error
		if err != nil {
			return fmt.Errorf("ensure model %s: %w", spec.Name(), err)
		}
		if row.Dimensions != spec.Dimensions() {
			return fmt.Errorf("model %s is recorded with %d dimensions but the registry declares %d",
				spec.Name(), row.Dimensions, spec.Dimensions())
		}
	}
	return nil
}

// BuildEmbeddingStores creates one embedding store per registered model,
// keyed by model name. PostgreSQL gets the pgvector store with database-side
// ranking; SQLite gets the JSON-column store ranked in memory.
func BuildEmbeddingStores(db database.Database, registry llm.Registry, logger *slog.Logger) (map[string]search.EmbeddingStore, error) {
	stores := make(map[string]search.EmbeddingStore, len(registry.All()))
	for _, spec := range registry.All() {
		var (
			store search.EmbeddingStore
			err   error
		)
		if db.IsPostgres() {
			store, err = NewPgvectorEmbeddingStore(db, spec, logger)
		} else {
			store, err = NewEmbeddingStore(db, spec, logger)
		}
		if err != nil {
			return nil, err
		}
		stores[spec.Name()] = store
	}
	return stores, nil
}
