package model

import "time"

// ================ Config ================
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3002"`
	ClientURL       string        `envconfig:"CLIENT_URL" default:"http://localhost:3000"`
	BodyLimitBytes  int64         `envconfig:"BODY_LIMIT_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	TrustedProxies  []string      `envconfig:"TRUSTED_PROXIES"`
}

type RateLimitConfig struct {
	Max    int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
}

type CompareModelConfig struct {
	Model       string  `envconfig:"COMPARE_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"COMPARE_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"COMPARE_TEMPERATURE" default:"0.2"`
}

type SafetyModelConfig struct {
	Model       string  `envconfig:"SAFETY_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"SAFETY_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"SAFETY_TEMPERATURE" default:"0.4"`
}

type StoreConfig struct {
	RunTimeout  time.Duration `envconfig:"STORE_RUN_TIMEOUT" default:"60s"`
	SessionTTL  time.Duration `envconfig:"STORE_SESSION_TTL" default:"720h"`
	MaxSessions int           `envconfig:"STORE_MAX_SESSIONS" default:"4096"`
}

type DatabaseConfig struct {
	URL  string `envconfig:"DATABASE_URL"`
	Path string `envconfig:"DATABASE_PATH" default:"storefront.db"`
}

type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH"`
}

type GatewayClientConfig struct {
	URL     string        `envconfig:"GATEWAY_URL" default:"http://localhost:3002/api"`
	Timeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"90s"`
}
