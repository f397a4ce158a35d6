package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	corpus "github.com/pondside/corpus"
	"github.com/pondside/corpus/infrastructure/api"
	apimiddleware "github.com/pondside/corpus/infrastructure/api/middleware"
	v1 "github.com/pondside/corpus/infrastructure/api/v1"
	"github.com/pondside/corpus/internal/config"
	"github.com/pondside/corpus/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                        Server host to bind to (default: 0.0.0.0)
  PORT                        Server port to listen on (default: 8080)
  DATA_DIR                    Data directory (default: ~/.corpus)
  DB_URL                      Database URL (default: sqlite:///{data_dir}/corpus.db)
  LOG_LEVEL                   Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                  Log format: pretty, json (default: pretty)
  SEARCH_LIMIT                Retrieval result ceiling (default: 10)
  MODELS_FILE                 Optional YAML file declaring extra embedding models

  EMBEDDING_ENDPOINT_*        Embedding service configuration
    PROVIDER                  ollama or openai (default: ollama)
    BASE_URL                  Base URL (default: http://localhost:11434)
    MODEL                     Model identifier (default: all-minilm:l6-v2)
    API_KEY                   API key, if required
    TIMEOUT                   Request timeout in seconds (default: 30)
    NUM_PARALLEL_TASKS        Concurrent embed requests per document (default: 4)
    MAX_EMBED_CHARS           Snippet text bound at embed time (default: 8000)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slog.SetDefault(logger)

	client, err := corpus.NewFromConfig(cfg, corpus.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	logger.Info("corpus ready",
		"model", client.Model().Name(),
		"dimensions", client.Model().Dimensions(),
		"db", cfg.DBURL(),
	)

	server := api.NewServer(cfg.Addr(), logger)
	server.Router().Use(apimiddleware.Logging(logger))
	server.Router().Mount("/", v1.NewRouter(client.SourceTexts, client.Ingestion, client.Retriever, logger).Routes())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	opts := []config.AppConfigOption{
		config.WithHost(cfg.Host()),
		config.WithPort(cfg.Port()),
		config.WithDataDir(cfg.DataDir()),
		config.WithDBURL(cfg.DBURL()),
		config.WithLogLevel(cfg.LogLevel()),
		config.WithLogFormat(cfg.LogFormat()),
		config.WithSearchLimit(cfg.SearchLimit()),
		config.WithModelsFile(cfg.ModelsFile()),
		config.WithEmbedding(cfg.Embedding()),
	}
	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	return config.NewAppConfigWithOptions(opts...)
}
