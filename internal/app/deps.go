package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"embed-gateway/internal/cache"
	"embed-gateway/internal/config"
	"embed-gateway/internal/embeddings"
	"embed-gateway/internal/events"
	"embed-gateway/internal/logger"
	"embed-gateway/internal/retry"
	"embed-gateway/internal/store"
)

// Deps bundles common runtime dependencies for the gateway.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Cache    cache.Cache
	Events   events.Publisher
	Embedder embeddings.Embedder
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	pub, err := buildEvents(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Cache:    buildCache(cfg, log),
		Events:   pub,
		Embedder: buildEmbedder(cfg, log),
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL, cfg.VectorDim)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres vector store", "dim", cfg.VectorDim)
		return db, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when STORE_PROVIDER=redis")
		}
		kv, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
		}
		log.Info("using Redis key-value store; search disabled")
		return kv, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: postgres, redis)", cfg.StoreProvider)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	if cfg.QueueURL == "" {
		log.Info("no QUEUE_URL configured; event publishing disabled")
		return events.NewNoOpPublisher(), nil
	}
	var nc *nats.Conn
	err := retry.Do(context.Background(), 3, 200*time.Millisecond, func() error {
		var dialErr error
		nc, dialErr = nats.Connect(cfg.QueueURL)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS event publisher")
	return events.NewNATS(log, nc), nil
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheAddr == "" {
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.CacheAddr, cfg.CachePassword)
	if err != nil {
		log.Warn("cache unavailable; falling back to no-op", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis search cache", "ttl_seconds", cfg.CacheTTL)
	return c
}

func buildEmbedder(cfg config.Config, log *slog.Logger) embeddings.Embedder {
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
	return embeddings.NewOpenAIEmbedder(openai.EmbeddingModel(cfg.EmbeddingModel))
}
