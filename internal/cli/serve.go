package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skintellect/storefront/internal/catalog"
	"github.com/skintellect/storefront/internal/checkout"
	"github.com/skintellect/storefront/internal/gateway"
	"github.com/skintellect/storefront/internal/kv"
	"github.com/skintellect/storefront/internal/ratelimit"
	"github.com/skintellect/storefront/internal/server"
	"github.com/skintellect/storefront/internal/store"
	logx "github.com/skintellect/storefront/pkg/logger"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API and AI gateway",
		Long: `Serve the AI gateway (/api/ai/*), the catalog and the shopper session API.

Redis backs session persistence and rate limiting when REDIS_URL is set; otherwise both
live in process memory. Orders go to Postgres when DATABASE_URL is set, SQLite otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.EnvFile)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			initLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *AppConfig) error {
	if cfg.APIKey == "" {
		return NewExitError(ExitCommandError, "GEMINI_API_KEY is required")
	}
	if cfg.Env().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load catalog", err)
	}

	limits := ratelimit.Config{Max: cfg.RateLimit.Max, Window: cfg.RateLimit.Window}
	var (
		repo    kv.Repository     = kv.NewMemoryStore()
		limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(limits)
	)
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "connect redis", err)
		}
		defer closeRedis(rdb)
		repo = kv.NewRedisStore(rdb, cfg.Store.SessionTTL)
		limiter = ratelimit.NewRedisLimiter(rdb, limits)
		logx.Info().Msg("Connected to Redis")
	}

	db, err := checkout.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open order database", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	analyst, err := gateway.NewGeminiAnalyst(ctx, gateway.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Compare: cfg.Compare,
		Safety:  cfg.Safety,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "build analyst", err)
	}
	ai := gateway.NewService(analyst)

	sessions, err := store.NewRegistry(repo, gateway.NewLocalClient(ai), store.RegistryOptions{
		MaxSessions: cfg.Store.MaxSessions,
		RunTimeout:  cfg.Store.RunTimeout,
	})
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Gateway:  ai,
		Limiter:  limiter,
		Catalog:  cat,
		Sessions: sessions,
		Checkout: checkout.NewService(checkout.NewGormOrderRepository(db), cat),
	}, server.Options{
		ClientURL:      cfg.Server.ClientURL,
		BodyLimit:      cfg.Server.BodyLimitBytes,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Env().String()).
			Int("products", cat.Len()).
			Msg("AI gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logx.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logx.Warn().Err(err).Msg("close redis")
	}
}
