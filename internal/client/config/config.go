// Package config loads healthctl settings from HEALTHTRACK_* environment
// variables.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const envPrefix = "HEALTHTRACK_"

type Config struct {
	APIURL        string        `env:"API_URL,        default=https://healthtrack-backend-redj.onrender.com"`
	SessionDB     string        `env:"SESSION_DB"`
	LogLevel      string        `env:"LOG_LEVEL,      default=warn"`
	RetryAttempts uint64        `env:"RETRY_ATTEMPTS, default=0"`
	RetryBase     time.Duration `env:"RETRY_BASE,     default=200ms"`
	Timeout       time.Duration `env:"TIMEOUT,        default=0"`
}

// Load reads the environment. An empty SESSION_DB resolves to
// ~/.healthtrack/session.db.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper(), os.UserHomeDir)
}

func load(ctx context.Context, lookuper envconfig.Lookuper, home func() (string, error)) (*Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.SessionDB == "" {
		dir, err := home()
		if err != nil {
			return nil, fmt.Errorf("load config: resolve home: %w", err)
		}
		cfg.SessionDB = filepath.Join(dir, ".healthtrack", "session.db")
	}
	return &cfg, nil
}
