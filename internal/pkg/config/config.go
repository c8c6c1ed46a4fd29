package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// DefaultPayoutPct is the global payout percentage used when a user
	// has no per-user override.
	DefaultPayoutPct int `env:"DEFAULT_PAYOUT_PCT, default=80"`

	// BootstrapKey is the pre-shared secret that bypasses the bootstrap
	// rate limiter. Empty disables the bypass.
	BootstrapKey        string        `env:"BOOTSTRAP_KEY"`
	BootstrapRateLimit  int64         `env:"BOOTSTRAP_RATE_LIMIT,  default=5"`
	BootstrapRateWindow time.Duration `env:"BOOTSTRAP_RATE_WINDOW, default=15m"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=trading_platform"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
