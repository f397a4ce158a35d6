package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Builtins(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	spec, ok := registry.Lookup("all-minilm:l6-v2")
	require.True(t, ok)
	assert.Equal(t, 384, spec.Dimensions())
	assert.Equal(t, "llm_embeddings_minilm_l6_v2", spec.TableName())

	spec, ok = registry.Lookup("nomic-embed-text")
	require.True(t, ok)
	assert.Equal(t, 768, spec.Dimensions())
}

func TestNewRegistry_Extras(t *testing.T) {
	registry, err := NewRegistry(NewModelSpec("custom", 16, "llm_embeddings_custom"))
	require.NoError(t, err)

	spec, ok := registry.Lookup("custom")
	require.True(t, ok)
	assert.Equal(t, 16, spec.Dimensions())
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec ModelSpec
	}{
		{name: "empty name", spec: NewModelSpec("", 8, "t")},
		{name: "zero dimensions", spec: NewModelSpec("m", 0, "t")},
		{name: "negative dimensions", spec: NewModelSpec("m", -1, "t")},
		{name: "empty table", spec: NewModelSpec("m", 8, "")},
		{name: "duplicate builtin", spec: NewModelSpec("all-minilm:l6-v2", 384, "other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_Require(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	_, err = registry.Require("all-minilm:l6-v2")
	assert.NoError(t, err)

	_, err = registry.Require("no-such-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-model")
	assert.Contains(t, err.Error(), "all-minilm:l6-v2")
}

func TestLoadSpecsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `models:
  - name: mxbai-embed-large
    dimensions: 1024
    table: llm_embeddings_mxbai_embed_large
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	specs, err := LoadSpecsFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "mxbai-embed-large", specs[0].Name())
	assert.Equal(t, 1024, specs[0].Dimensions())
	assert.Equal(t, "llm_embeddings_mxbai_embed_large", specs[0].TableName())
}

func TestLoadSpecsFile_Missing(t *testing.T) {
	_, err := LoadSpecsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
