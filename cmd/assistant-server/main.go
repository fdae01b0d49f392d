// cmd/assistant-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"policy-assistant/internal/assistant"
	"policy-assistant/internal/common/config"
	"policy-assistant/internal/common/database"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/common/observability"
	"policy-assistant/internal/embedding"
	"policy-assistant/internal/generation"
	"policy-assistant/internal/policystore"
	"policy-assistant/internal/server"
	"policy-assistant/internal/session"
	"policy-assistant/internal/tools"
	"policy-assistant/internal/tools/actionrecommend"
	"policy-assistant/internal/tools/intentdetect"
	"policy-assistant/internal/tools/userpolicy"
	"policy-assistant/internal/tools/vectorsearch"
	"policy-assistant/internal/vectorindex"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Session store: redis when enabled, otherwise in-memory ---
	sessionTTL := time.Duration(cfg.Session.TTL) * time.Second
	var sessions session.Store

	if cfg.Session.Backend == "redis" && cfg.Database.Redis.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		sessions = session.NewRedisStore(redisClient.GetClient(), sessionTTL, log)
	} else {
		memStore := session.NewMemoryStore(sessionTTL, cfg.Session.MaxSessions, log)
		defer memStore.Close()
		sessions = memStore
	}

	// --- Policy store: postgres when enabled, otherwise the JSON files ---
	var policies policystore.Store

	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		policies = policystore.NewPostgresStore(pg.DB, log)
	} else {
		fileStore, err := policystore.NewFileStore(
			cfg.Resources.UserDetailsPath,
			cfg.Resources.ProductMappingPath,
			log,
		)
		if err != nil {
			zapLog.Fatal("policy store load failed", zap.Error(err))
		}
		policies = fileStore
	}

	// --- Collaborator clients ---
	embedder := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.APIs.Embedding.BaseURL,
		APIKey:    cfg.APIs.Embedding.APIKey,
		Model:     cfg.APIs.Embedding.Model,
		Dimension: cfg.APIs.Embedding.Dimension,
		Timeout:   time.Duration(cfg.APIs.Embedding.Timeout) * time.Millisecond,
	}, log)

	index := vectorindex.NewElasticsearchIndex(esClient.GetClient(), cfg.Database.Elasticsearch.Index, log)

	generator := generation.NewClient(generation.Config{
		BaseURL:     cfg.APIs.Generation.BaseURL,
		APIKey:      cfg.APIs.Generation.APIKey,
		Model:       cfg.APIs.Generation.Model,
		Timeout:     time.Duration(cfg.APIs.Generation.Timeout) * time.Millisecond,
		MaxTokens:   cfg.APIs.Generation.MaxTokens,
		Temperature: cfg.APIs.Generation.Temperature,
	}, log)

	// --- Tools and registry ---
	recommender := actionrecommend.NewRecommender(log)
	detector := intentdetect.NewDetector(intentdetect.Config{
		BaseURL: cfg.APIs.Intent.BaseURL,
		Timeout: time.Duration(cfg.APIs.Intent.Timeout) * time.Millisecond,
	}, log)
	searchTool := vectorsearch.NewTool(embedder, index, log)
	policyTool := userpolicy.NewTool(policies, log)

	registry, err := tools.NewRegistry(log, recommender, detector, searchTool, policyTool)
	if err != nil {
		zapLog.Fatal("tool registry build failed", zap.Error(err))
	}

	controller := assistant.NewController(sessions, recommender, detector,
		searchTool, registry, generator, log)

	srv := server.New(cfg.Server, cfg.App.Version, controller, searchTool,
		generator, registry, log)

	// --- Serve until shutdown signal ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown error", zap.Error(err))
	}

	zapLog.Info("Assistant server stopped gracefully")
}
