package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/domain/llm"
	"github.com/pondside/corpus/domain/search"
	"github.com/pondside/corpus/infrastructure/persistence"
	"github.com/pondside/corpus/internal/database"
)

// fakeEmbedder produces a fixed-dimension vector derived from the text
// length and records every call. Overridable per text for failure cases.
type fakeEmbedder struct {
	mu         sync.Mutex
	calls      []string
	dimensions int
	failOn     map[string]error
	emptyOn    map[string]bool
}

func newFakeEmbedder(dimensions int) *fakeEmbedder {
	return &fakeEmbedder{
		dimensions: dimensions,
		failOn:     map[string]error{},
		emptyOn:    map[string]bool{},
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	if text == "" || f.emptyOn[text] {
		return nil, nil
	}
	vector := make([]float64, f.dimensions)
	for i := range vector {
		vector[i] = float64(len(text) + i)
	}
	return vector, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	sourceTexts persistence.SourceTextStore
	snippets    persistence.SnippetStore
	embeddings  *persistence.EmbeddingStore
	embedder    *fakeEmbedder
	spec        llm.ModelSpec
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	spec := llm.NewModelSpec("fake-model", 3, "llm_embeddings_fake_model")
	embeddings, err := persistence.NewEmbeddingStore(db, spec, nil)
	require.NoError(t, err)

	return fixture{
		sourceTexts: persistence.NewSourceTextStore(db),
		snippets:    persistence.NewSnippetStore(db),
		embeddings:  embeddings,
		embedder:    newFakeEmbedder(3),
		spec:        spec,
	}
}

func (f fixture) ingestion(t *testing.T) *Ingestion {
	t.Helper()
	svc, err := NewIngestion(f.sourceTexts, f.snippets, f.embeddings, f.embedder, f.spec, 2, 0, nil)
	require.NoError(t, err)
	return svc
}

func (f fixture) addSourceText(t *testing.T, content string) uuid.UUID {
	t.Helper()
	text := corpus.NewSourceText("doc", "doc.txt", "", "", content)
	require.NoError(t, f.sourceTexts.Create(context.Background(), text))
	return text.ID()
}

func TestIngestion_CreateSnippets(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "first paragraph\n\nsecond paragraph\n\n\nthird")

	count, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	snippets, err := f.snippets.FindBySourceText(ctx, id)
	require.NoError(t, err)
	require.Len(t, snippets, 3)
	assert.Equal(t, "first paragraph", snippets[0].Content())
	assert.Equal(t, "third", snippets[2].Content())
}

func TestIngestion_CreateSnippets_UnknownDocument(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)

	_, err := svc.CreateSnippets(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, corpus.ErrNotFound))
}

func TestIngestion_CreateSnippets_BlankDocument(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "   \n\n\t\n")

	count, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestion_CreateSnippets_Rerun(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "one\n\ntwo")

	_, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	_, err = svc.CreateSnippets(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, corpus.ErrConflict))
}

func TestIngestion_CreateEmbeddings(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "one\n\ntwo\n\nthree")
	_, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	count, err := svc.CreateEmbeddings(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, f.embedder.callCount())

	stored, err := f.embeddings.All(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestIngestion_CreateEmbeddings_NoSnippets(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "content")

	_, err := svc.CreateEmbeddings(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, corpus.ErrValidation))
	assert.Zero(t, f.embedder.callCount())
}

func TestIngestion_CreateEmbeddings_UpstreamFailureAborts(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "one\n\ntwo\n\nthree")
	_, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	f.embedder.failOn["two"] = fmt.Errorf("%w: service unavailable", search.ErrUpstream)

	_, err = svc.CreateEmbeddings(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrUpstream))

	// Nothing persisted when any snippet fails.
	stored, err := f.embeddings.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestIngestion_CreateEmbeddings_SkipsEmptyVectors(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestion(t)
	ctx := context.Background()

	id := f.addSourceText(t, "one\n\ntwo\n\nthree")
	_, err := svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	f.embedder.emptyOn["two"] = true

	count, err := svc.CreateEmbeddings(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestion_TruncatesLongSnippets(t *testing.T) {
	f := newFixture(t)
	svc, err := NewIngestion(f.sourceTexts, f.snippets, f.embeddings, f.embedder, f.spec, 1, 5, nil)
	require.NoError(t, err)
	ctx := context.Background()

	id := f.addSourceText(t, "abcdefghij")
	_, err = svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	_, err = svc.CreateEmbeddings(ctx, id)
	require.NoError(t, err)

	require.Len(t, f.embedder.calls, 1)
	assert.Equal(t, "abcde", f.embedder.calls[0])

	// The stored snippet keeps its full content.
	snippets, err := f.snippets.FindBySourceText(ctx, id)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "abcdefghij", snippets[0].Content())
}

func TestIngestion_TruncationKeepsRuneBoundary(t *testing.T) {
	f := newFixture(t)
	// The limit lands inside the first three-byte rune after "ab".
	svc, err := NewIngestion(f.sourceTexts, f.snippets, f.embeddings, f.embedder, f.spec, 1, 4, nil)
	require.NoError(t, err)
	ctx := context.Background()

	id := f.addSourceText(t, "ab日本語")
	_, err = svc.CreateSnippets(ctx, id)
	require.NoError(t, err)

	_, err = svc.CreateEmbeddings(ctx, id)
	require.NoError(t, err)

	require.Len(t, f.embedder.calls, 1)
	assert.Equal(t, "ab", f.embedder.calls[0])
	assert.True(t, utf8.ValidString(f.embedder.calls[0]))
}
