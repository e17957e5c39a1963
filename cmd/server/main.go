package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/common/logger"
	"basegraph.app/approvals/common/otel"
	"basegraph.app/approvals/core/config"
	"basegraph.app/approvals/core/db"
	"basegraph.app/approvals/internal/directory"
	"basegraph.app/approvals/internal/http/middleware"
	httprouter "basegraph.app/approvals/internal/http/router"
	"basegraph.app/approvals/internal/queue"
	"basegraph.app/approvals/internal/ratelimit"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
	"basegraph.app/approvals/internal/webhook"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "approvals api starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if cfg.AdminAPIKey == "" {
		slog.WarnContext(ctx, "ADMIN_API_KEY not set, admin endpoints are disabled")
	}

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.RedisStream)

	eventProducer := queue.NewRedisProducer(redisClient, cfg.Queue.RedisStream, slog.Default())
	defer eventProducer.Close()

	stores := store.NewStores(database.Queries())

	dispatcher := webhook.NewDispatcher(webhook.DispatcherDeps{
		Deliveries:    stores.WebhookDeliveries(),
		Registrations: stores.WebhookRegistrations(),
		Events:        stores.WebhookEvents(),
		Services:      stores.ServiceIdentities(),
		Client:        &http.Client{},
		Logger:        slog.Default(),
	}, webhook.Config{
		RetryDelay: cfg.Webhook.RetryDelay,
		UserAgent:  cfg.Webhook.UserAgent,
	})

	var resolver directory.Resolver = directory.Permissive{}
	if cfg.Directory.Enabled() {
		resolver = directory.NewHTTPResolver(cfg.Directory.BaseURL, cfg.Directory.Timeout)
		slog.InfoContext(ctx, "directory lookups enabled", "base_url", cfg.Directory.BaseURL)
	}

	services := service.NewServices(
		stores,
		service.NewTxRunner(database),
		eventProducer,
		dispatcher,
		resolver,
		slog.Default(),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, newLimiter(cfg, redisClient))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func newLimiter(cfg config.Config, client *redis.Client) ratelimit.Limiter {
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		slog.Info("rate limiter using redis", "window", cfg.RateLimit.Window)
		return ratelimit.NewRedis(client, slog.Default())
	}
	// Counters are per process; replicas each admit a full quota.
	slog.Info("rate limiter using process memory", "window", cfg.RateLimit.Window)
	return ratelimit.NewMemory()
}

func setupRouter(cfg config.Config, services *service.Services, limiter ratelimit.Limiter) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		AdminAPIKey:     cfg.AdminAPIKey,
		Limiter:         limiter,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	return router
}

const banner = `
 █████╗ ██████╗ ██████╗ ██████╗  ██████╗ ██╗   ██╗ █████╗ ██╗     ███████╗
██╔══██╗██╔══██╗██╔══██╗██╔══██╗██╔═══██╗██║   ██║██╔══██╗██║     ██╔════╝
███████║██████╔╝██████╔╝██████╔╝██║   ██║██║   ██║███████║██║     ███████╗
██╔══██║██╔═══╝ ██╔═══╝ ██╔══██╗██║   ██║╚██╗ ██╔╝██╔══██║██║     ╚════██║
██║  ██║██║     ██║     ██║  ██║╚██████╔╝ ╚████╔╝ ██║  ██║███████╗███████║
╚═╝  ╚═╝╚═╝     ╚═╝     ╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚═╝  ╚═╝╚══════╝╚══════╝
`
