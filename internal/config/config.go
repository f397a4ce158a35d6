// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultLogLevel              = "INFO"
	DefaultSearchLimit           = 10
	DefaultEmbeddingModel        = "all-minilm:l6-v2"
	DefaultEmbeddingBaseURL      = "http://localhost:11434"
	DefaultEndpointTimeout       = 30 * time.Second
	DefaultEndpointParallelTasks = 4
	DefaultMaxEmbedChars         = 8000
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// ProviderKind selects the embedding provider implementation.
type ProviderKind string

// ProviderKind values.
const (
	ProviderOllama ProviderKind = "ollama"
	ProviderOpenAI ProviderKind = "openai"
)

// Endpoint configures the external embedding service.
type Endpoint struct {
	provider         ProviderKind
	baseURL          string
	model            string
	apiKey           string
	timeout          time.Duration
	numParallelTasks int
	maxEmbedChars    int
}

// NewEndpoint creates an Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		provider:         ProviderOllama,
		baseURL:          DefaultEmbeddingBaseURL,
		model:            DefaultEmbeddingModel,
		timeout:          DefaultEndpointTimeout,
		numParallelTasks: DefaultEndpointParallelTasks,
		maxEmbedChars:    DefaultMaxEmbedChars,
	}
}

// Provider returns the embedding provider kind.
func (e Endpoint) Provider() ProviderKind { return e.provider }

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the embedding model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// NumParallelTasks returns the per-document embedding concurrency bound.
func (e Endpoint) NumParallelTasks() int { return e.numParallelTasks }

// MaxEmbedChars returns the character bound applied to snippet text at embed
// time. Stored snippet content is never modified.
func (e Endpoint) MaxEmbedChars() int { return e.maxEmbedChars }

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithProvider sets the provider kind.
func WithProvider(p ProviderKind) EndpointOption {
	return func(e *Endpoint) { e.provider = p }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithNumParallelTasks sets the embedding concurrency bound.
func WithNumParallelTasks(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.numParallelTasks = n
		}
	}
}

// WithMaxEmbedChars sets the embed-time character bound.
func WithMaxEmbedChars(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.maxEmbedChars = n
		}
	}
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host        string
	port        int
	dataDir     string
	dbURL       string
	logLevel    string
	logFormat   LogFormat
	searchLimit int
	modelsFile  string
	embedding   Endpoint
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:        DefaultHost,
		port:        DefaultPort,
		dataDir:     DefaultDataDir(),
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		searchLimit: DefaultSearchLimit,
		embedding:   NewEndpoint(),
	}
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".corpus"
	}
	return filepath.Join(home, ".corpus")
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port address to bind to.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL, defaulting to a SQLite file
// under the data directory.
func (c AppConfig) DBURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	return "sqlite:///" + filepath.Join(c.dataDir, "corpus.db")
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// SearchLimit returns the hard ceiling on retrieval result counts.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// ModelsFile returns the path of an optional extra-models YAML file.
func (c AppConfig) ModelsFile() string { return c.modelsFile }

// Embedding returns the embedding endpoint configuration.
func (c AppConfig) Embedding() Endpoint { return c.embedding }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if dir != "" {
			c.dataDir = dir
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithSearchLimit sets the retrieval result ceiling.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithModelsFile sets the extra-models YAML file path.
func WithModelsFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.modelsFile = path }
}

// WithEmbedding sets the embedding endpoint configuration.
func WithEmbedding(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.embedding = e }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
