package internal

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every configuration variable
const EnvPrefix = "GPT_WEB_"

// DefaultAPITimeout bounds every API request
const DefaultAPITimeout = 5 * time.Second

// Config holds the tool configuration read from the environment
type Config struct {
	APIBaseURL   string        `env:"API_BASE_URL"`
	APITimeout   time.Duration `env:"API_TIMEOUT" envDefault:"5s"`
	DataDir      string        `env:"DATA_DIR"`
	DatabaseName string        `env:"DB_NAME" envDefault:"chat-db"`
	UID          string        `env:"UID"`
	UIDFile      string        `env:"UID_FILE"`
	LogFile      string        `env:"LOG_FILE"`
	TelemetryDir string        `env:"TELEMETRY_DIR"`
}

// LoadConfig reads configuration from GPT_WEB_* variables, loading a .env
// file from the working directory first when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		LogDebug("Loaded .env file")
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	return &cfg, nil
}

// Paths resolves the data paths for this configuration
func (c *Config) Paths() (DataPaths, error) {
	paths, err := ResolveDataPaths(c.DataDir, c.DatabaseName)
	if err != nil {
		return DataPaths{}, err
	}
	if c.UIDFile != "" {
		paths.UIDPath = c.UIDFile
	}
	return paths, nil
}

// Session returns the identity source for API requests: a fixed UID when
// configured, the UID file otherwise.
func (c *Config) Session() (SessionContext, error) {
	if c.UID != "" {
		return StaticSession(c.UID), nil
	}
	paths, err := c.Paths()
	if err != nil {
		return nil, err
	}
	return NewFileSession(paths.UIDPath), nil
}
