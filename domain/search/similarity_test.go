package search

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL2Distance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 0,
		},
		{
			name:     "unit apart",
			a:        []float64{0, 0},
			b:        []float64{1, 0},
			expected: 1,
		},
		{
			name:     "pythagorean",
			a:        []float64{0, 0},
			b:        []float64{3, 4},
			expected: 5,
		},
		{
			name:     "mismatched lengths",
			a:        []float64{1, 0},
			b:        []float64{1, 0, 0},
			expected: math.Inf(1),
		},
		{
			name:     "empty vectors",
			a:        []float64{},
			b:        []float64{},
			expected: math.Inf(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, L2Distance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopKNearest_OrdersByAscendingDistance(t *testing.T) {
	far := NewEmbedding(uuid.New(), []float64{10, 0})
	near := NewEmbedding(uuid.New(), []float64{1, 0})
	middle := NewEmbedding(uuid.New(), []float64{5, 0})

	matches := TopKNearest([]float64{0, 0}, []Embedding{far, near, middle}, 3)

	require.Len(t, matches, 3)
	assert.Equal(t, near.SnippetID(), matches[0].SnippetID())
	assert.Equal(t, middle.SnippetID(), matches[1].SnippetID())
	assert.Equal(t, far.SnippetID(), matches[2].SnippetID())

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Distance(), matches[i-1].Distance())
	}
}

func TestTopKNearest_TiesKeepInsertionOrder(t *testing.T) {
	first := NewEmbedding(uuid.New(), []float64{1, 0})
	second := NewEmbedding(uuid.New(), []float64{0, 1})

	matches := TopKNearest([]float64{0, 0}, []Embedding{first, second}, 2)

	require.Len(t, matches, 2)
	assert.Equal(t, first.SnippetID(), matches[0].SnippetID())
	assert.Equal(t, second.SnippetID(), matches[1].SnippetID())
}

func TestTopKNearest_ClampsToCorpusSize(t *testing.T) {
	embeddings := []Embedding{
		NewEmbedding(uuid.New(), []float64{1, 0}),
		NewEmbedding(uuid.New(), []float64{2, 0}),
	}

	matches := TopKNearest([]float64{0, 0}, embeddings, 10)
	assert.Len(t, matches, 2)
}

func TestTopKNearest_EmptyInputs(t *testing.T) {
	assert.Empty(t, TopKNearest([]float64{1}, nil, 5))
	assert.Empty(t, TopKNearest([]float64{1}, []Embedding{NewEmbedding(uuid.New(), []float64{1})}, 0))
}
