// Package llm tracks the embedding models available to the corpus and the
// storage partition each one writes to.
package llm

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelSpec identifies an embedding model: its stable name (a tag from the
// ollama model library), the fixed length of the vectors it produces, and the
// database table its embeddings are stored in. Vectors of different models
// are never comparable, so each model gets its own dimension-matched table.
type ModelSpec struct {
	name       string
	dimensions int
	tableName  string
}

// NewModelSpec creates a ModelSpec.
func NewModelSpec(name string, dimensions int, tableName string) ModelSpec {
	return ModelSpec{
		name:       name,
		dimensions: dimensions,
		tableName:  tableName,
	}
}

// Name returns the stable model identifier.
func (m ModelSpec) Name() string { return m.name }

// Dimensions returns the vector length for this model.
func (m ModelSpec) Dimensions() int { return m.dimensions }

// TableName returns the embedding table for this model.
func (m ModelSpec) TableName() string { return m.tableName }

// Registry maps model names to their specs. It is configuration, assembled
// and validated at startup; an unknown configured model name is a fatal
// configuration error, never a per-request one.
type Registry struct {
	specs map[string]ModelSpec
}

// Builtin model specs. https://www.sbert.net/docs/pretrained_models.html
var builtins = []ModelSpec{
	NewModelSpec("all-minilm:l6-v2", 384, "llm_embeddings_minilm_l6_v2"),
	NewModelSpec("nomic-embed-text", 768, "llm_embeddings_nomic_embed_text"),
}

// NewRegistry creates a Registry holding the builtin models plus any extras.
// Returns an error on duplicate names or invalid specs.
func NewRegistry(extras ...ModelSpec) (Registry, error) {
	specs := make(map[string]ModelSpec, len(builtins)+len(extras))
	for _, spec := range append(append([]ModelSpec{}, builtins...), extras...) {
		if spec.name == "" {
			return Registry{}, fmt.Errorf("model spec with empty name")
		}
		if spec.dimensions <= 0 {
			return Registry{}, fmt.Errorf("model %q: dimensions must be positive, got %d", spec.name, spec.dimensions)
		}
		if spec.tableName == "" {
			return Registry{}, fmt.Errorf("model %q: empty table name", spec.name)
		}
		if _, ok := specs[spec.name]; ok {
			return Registry{}, fmt.Errorf("duplicate model %q", spec.name)
		}
		specs[spec.name] = spec
	}
	return Registry{specs: specs}, nil
}

// Lookup returns the spec for the given model name.
func (r Registry) Lookup(name string) (ModelSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Require returns the spec for the given model name, or an error naming the
// registered models if it is unknown.
func (r Registry) Require(name string) (ModelSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return ModelSpec{}, fmt.Errorf("embedding model %q is not registered (registered: %v)", name, r.Names())
	}
	return spec, nil
}

// Names returns the registered model names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered specs, ordered by name.
func (r Registry) All() []ModelSpec {
	specs := make([]ModelSpec, 0, len(r.specs))
	for _, name := range r.Names() {
		specs = append(specs, r.specs[name])
	}
	return specs
}

// modelFile is the YAML shape of an extra-models file.
type modelFile struct {
	Models []struct {
		Name       string `yaml:"name"`
		Dimensions int    `yaml:"dimensions"`
		Table      string `yaml:"table"`
	} `yaml:"models"`
}

// LoadSpecsFile reads extra model specs from a YAML file:
//
//	models:
//	  - name: mxbai-embed-large
//	    dimensions: 1024
//	    table: llm_embeddings_mxbai_embed_large
func LoadSpecsFile(path string) ([]ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse models file %s: %w", path, err)
	}

	specs := make([]ModelSpec, len(file.Models))
	for i, m := range file.Models {
		specs[i] = NewModelSpec(m.Name, m.Dimensions, m.Table)
	}
	return specs, nil
}
