package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Request limits
	MaxBodySize int64 `env:"MAX_BODY_SIZE" envDefault:"1048576"` // 1MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" (pgvector) or "redis" (key-value only)
	DBURL         string `env:"DB_URL"`
	VectorDim     int    `env:"VECTOR_DIM" envDefault:"1536"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Search result cache (optional; empty CACHE_ADDR disables caching)
	CacheAddr     string `env:"CACHE_ADDR"`
	CachePassword string `env:"CACHE_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"300"` // seconds

	// Events (optional; empty QUEUE_URL disables publishing)
	QueueURL string `env:"QUEUE_URL"`

	// Embeddings. The provider credential arrives per request in the
	// caller's Authorization header, so no API key lives in config.
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
