package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	envfiles "github.com/osa911/userconsole/internal/config/env"
	"github.com/osa911/userconsole/internal/logging"
)

// Config holds all configuration for the console and the CLI
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`

	// Remote API
	APIURL     string        `env:"API_URL"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"0s"`

	// Web console
	PublicURL string `env:"CONSOLE_PUBLIC_URL"`
	Port      string `env:"CONSOLE_PORT" envDefault:"3000"`

	// Rate limiting of the web console
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Logging
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
	LogRequests bool   `env:"LOG_REQUESTS" envDefault:"false"`

	// Telemetry
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// EnvFile is the .env file that was loaded, if any
	EnvFile string
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	loaded := envfiles.LoadEnv()

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

// Parse reads the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LogFile == "" && cfg.Environment == "production" {
		cfg.LogFile = "/app/logs/console.log"
	}

	return cfg, nil
}

// IsProduction reports whether the console runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// BaseURL resolves the remote API base URL for this configuration
func (c *Config) BaseURL() string {
	host := c.PublicURL
	if host == "" {
		host, _ = os.Hostname()
	}
	return ResolveBaseURL(c.APIURL, host)
}

// Addr is the listen address of the web console
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Logging builds the logger configuration
func (c *Config) Logging() *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.File = c.LogFile
	lc.Requests = c.LogRequests
	return lc
}
