// Package provider implements search.Embedder against external embedding
// services.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pondside/corpus/domain/search"
)

// embeddingsPath is the ollama embedding endpoint.
const embeddingsPath = "/api/embeddings"

// OllamaProvider implements search.Embedder against an ollama-compatible
// embedding service.
type OllamaProvider struct {
	client  *http.Client
	baseURL string
	model   string
}

// OllamaOption is a functional option for OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithHTTPClient sets the HTTP client, primarily for tests.
func WithHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) { p.client = client }
}

// WithOllamaTimeout sets the request timeout.
func WithOllamaTimeout(d time.Duration) OllamaOption {
	return func(p *OllamaProvider) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// NewOllamaProvider creates a provider that embeds text with the given model.
func NewOllamaProvider(baseURL, model string, opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Model returns the configured model identifier.
func (p *OllamaProvider) Model() string { return p.model }

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for text. An empty text returns nil
// without contacting the service. A response without an embedding field
// yields an empty vector and no error; transport failures, non-2xx statuses
// and malformed bodies wrap search.ErrUpstream.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+embeddingsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", search.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", search.ErrUpstream, err)
	}

	// A missing embedding field is "nothing produced", not a failure.
	return parsed.Embedding, nil
}
