package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration. Nested structs use an
// underscore delimiter (e.g. EMBEDDING_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.corpus
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/corpus.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// SearchLimit is the hard ceiling on retrieval result counts.
	// Env: SEARCH_LIMIT (default: 10)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"10"`

	// ModelsFile is an optional YAML file declaring extra embedding models.
	// Env: MODELS_FILE
	ModelsFile string `envconfig:"MODELS_FILE"`

	// EmbeddingEndpoint configures the external embedding service.
	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`
}

// EndpointEnv holds environment configuration for the embedding endpoint.
type EndpointEnv struct {
	// Provider selects the embedding provider (ollama or openai).
	Provider string `envconfig:"PROVIDER" default:"ollama"`

	// BaseURL is the service base URL.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:11434"`

	// Model is the embedding model identifier.
	Model string `envconfig:"MODEL" default:"all-minilm:l6-v2"`

	// APIKey authenticates against the service, if required.
	APIKey string `envconfig:"API_KEY"`

	// TimeoutSeconds is the request timeout in seconds.
	TimeoutSeconds int `envconfig:"TIMEOUT" default:"30"`

	// NumParallelTasks bounds concurrent embedding requests per document.
	NumParallelTasks int `envconfig:"NUM_PARALLEL_TASKS" default:"4"`

	// MaxEmbedChars bounds snippet text length at embed time.
	MaxEmbedChars int `envconfig:"MAX_EMBED_CHARS" default:"8000"`
}

// LoadConfig loads configuration from an optional .env file and the
// environment.
func LoadConfig(envFile string) (AppConfig, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	var env EnvConfig
	if err := envconfig.Process("", &env); err != nil {
		return AppConfig{}, fmt.Errorf("process environment: %w", err)
	}

	return env.ToAppConfig(), nil
}

// ToAppConfig converts environment configuration into an AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	format := LogFormatPretty
	if LogFormat(e.LogFormat) == LogFormatJSON {
		format = LogFormatJSON
	}

	endpoint := NewEndpointWithOptions(
		WithProvider(ProviderKind(e.EmbeddingEndpoint.Provider)),
		WithBaseURL(e.EmbeddingEndpoint.BaseURL),
		WithModel(e.EmbeddingEndpoint.Model),
		WithAPIKey(e.EmbeddingEndpoint.APIKey),
		WithTimeout(time.Duration(e.EmbeddingEndpoint.TimeoutSeconds)*time.Second),
		WithNumParallelTasks(e.EmbeddingEndpoint.NumParallelTasks),
		WithMaxEmbedChars(e.EmbeddingEndpoint.MaxEmbedChars),
	)

	return NewAppConfigWithOptions(
		WithHost(e.Host),
		WithPort(e.Port),
		WithDataDir(e.DataDir),
		WithDBURL(e.DBURL),
		WithLogLevel(e.LogLevel),
		WithLogFormat(format),
		WithSearchLimit(e.SearchLimit),
		WithModelsFile(e.ModelsFile),
		WithEmbedding(endpoint),
	)
}
