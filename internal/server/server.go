// Package server exposes the AI gateway and the shopper session API over HTTP.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/skintellect/storefront/internal/catalog"
	"github.com/skintellect/storefront/internal/checkout"
	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/gateway"
	"github.com/skintellect/storefront/internal/ratelimit"
	"github.com/skintellect/storefront/internal/store"
	logx "github.com/skintellect/storefront/pkg/logger"
)

const (
	// DefaultBodyLimit caps request bodies at 1 MiB.
	DefaultBodyLimit int64 = 1 << 20
	// DefaultClientURL is the storefront origin allowed by CORS when none is configured.
	DefaultClientURL = "http://localhost:3000"
)

// Deps are the services the router dispatches to. A nil Limiter disables rate limiting.
type Deps struct {
	Gateway  *gateway.Service
	Limiter  ratelimit.Limiter
	Catalog  *catalog.Catalog
	Sessions *store.Registry
	Checkout *checkout.Service
}

type Options struct {
	ClientURL string
	BodyLimit int64
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding headers are
	// honoured. When empty the client IP is always the socket address.
	TrustedProxies []string
}

// NewRouter wires middleware and routes into a gin engine.
func NewRouter(deps Deps, opts Options) *gin.Engine {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.ClientURL == "" {
		opts.ClientURL = DefaultClientURL
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		gateway.UseJSONNames(v)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logx.Error().Err(err).Strs("trusted_proxies", opts.TrustedProxies).Msg("invalid trusted proxies, using the socket address")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		requestLogger(),
		gin.CustomRecovery(recoverPanic),
		securityHeaders(),
		cors.New(corsConfig(opts.ClientURL)),
		bodyLimit(opts.BodyLimit),
	)
	r.NoRoute(func(c *gin.Context) {
		fail(c, errx.NotFound(errx.NotFoundMessage))
	})

	SetupRoutes(r, deps)
	return r
}

func corsConfig(clientURL string) cors.Config {
	return cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", SessionHeader},
		ExposeHeaders:    []string{SessionHeader, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
