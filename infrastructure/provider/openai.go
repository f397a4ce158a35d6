package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pondside/corpus/domain/search"
)

// OpenAIProvider implements search.Embedder using an OpenAI-compatible
// embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOpenAIProvider creates a provider from configuration.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Model returns the configured model identifier.
func (p *OpenAIProvider) Model() string { return p.model }

// Embed returns the embedding vector for text. An empty text returns nil
// without contacting the service; API failures wrap search.ErrUpstream.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrUpstream, err)
	}

	if len(resp.Data) == 0 {
		return []float64{}, nil
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}
