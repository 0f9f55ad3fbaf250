// Package config loads process-level server settings.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds HTTP server settings. Platform packages (db, redis, jwt) own
// their own configuration.
type Config struct {
	Port      string `env:"PORT"       envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	UserCacheTTL   time.Duration `env:"USER_CACHE_TTL"  envDefault:"5m"`
	ThrottleLimit  int           `env:"THROTTLE_LIMIT"  envDefault:"60"` // 0 disables throttling
	ThrottleWindow time.Duration `env:"THROTTLE_WINDOW" envDefault:"1m"`
}

// Addr returns the listen address for gin.
func (c Config) Addr() string {
	return ":" + c.Port
}

// LoadDotEnv loads .env into the process environment if the file exists.
// Variables already set take precedence.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
}

// Load parses the server configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse server config: %w", err)
	}
	return cfg, nil
}
