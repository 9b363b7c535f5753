package cli

import (
	"errors"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/skintellect/storefront/internal/core"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
	pkgredis "github.com/skintellect/storefront/pkg/redis"
)

// AppConfig defines every configurable parameter, sourced from environment variables
// (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis    pkgredis.Config
	Database model.DatabaseConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Server    model.ServerConfig
	RateLimit model.RateLimitConfig
	Compare   model.CompareModelConfig
	Safety    model.SafetyModelConfig
	Store     model.StoreConfig
	Catalog   model.CatalogConfig
	Gateway   model.GatewayClientConfig
}

// LoadConfig reads envFile when it exists, then the process environment.
func LoadConfig(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, WrapExitError(ExitCommandError, "load "+envFile, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "process environment config", err)
	}
	return &cfg, nil
}

// Env returns the parsed deployment environment.
func (c *AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

func initLogger(cfg *AppConfig, out io.Writer) {
	logx.Init(logx.LoggerOpts{
		Environment: cfg.Env(),
		Level:       cfg.LogLevel,
		Output:      out,
	})
}
