package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pondside/corpus/domain/corpus"
)

func TestSourceTexts_Create(t *testing.T) {
	f := newFixture(t)
	svc, err := NewSourceTexts(f.sourceTexts, nil)
	require.NoError(t, err)
	ctx := context.Background()

	text, err := svc.Create(ctx, CreateParams{
		Name:        "guide",
		Filename:    "guide.txt",
		Description: "a guide",
		Content:     "hello",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", text.ID().String())
	assert.False(t, text.CreatedAt().IsZero())

	found, err := f.sourceTexts.Find(ctx, text.ID())
	require.NoError(t, err)
	assert.Equal(t, "guide", found.Name())
	assert.Equal(t, "hello", found.Content())
}

func TestSourceTexts_Create_Validation(t *testing.T) {
	f := newFixture(t)
	svc, err := NewSourceTexts(f.sourceTexts, nil)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateParams
	}{
		{name: "missing name", params: CreateParams{Content: "hello"}},
		{name: "missing content", params: CreateParams{Name: "guide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, corpus.ErrValidation))
		})
	}
}
