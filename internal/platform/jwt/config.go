// Package jwtmw issues and verifies HS256 access tokens and provides the
// Gin middleware that guards authenticated routes.
package jwtmw

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// Config holds token signing and lifetime settings.
type Config struct {
	Secret     string        `env:"JWT_SECRET"`
	TTL        time.Duration `env:"JWT_TTL"         envDefault:"60m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"336h"` // two weeks from the original login
	Issuer     string        `env:"JWT_ISSUER"      envDefault:"auth_backend"`
	// BlacklistEnabled turns on the revocation list used by refresh and logout.
	BlacklistEnabled bool `env:"JWT_BLACKLIST_ENABLED" envDefault:"true"`
}

// LoadConfigFromEnv loads JWT configuration from environment variables.
func LoadConfigFromEnv() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("invalid JWT configuration, falling back to defaults", "error", err)
		cfg = Config{TTL: time.Hour, RefreshTTL: 14 * 24 * time.Hour, Issuer: "auth_backend", BlacklistEnabled: true, Secret: cfg.Secret}
	}
	return cfg
}
