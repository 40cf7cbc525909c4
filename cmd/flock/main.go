package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"flock/internal/aggregator"
	"flock/internal/amqp"
	"flock/internal/backend"
	"flock/internal/cache"
	"flock/internal/cli"
	apphttp "flock/internal/http"
	"flock/internal/identity"
	"flock/internal/log"
	"flock/internal/services"
	"flock/internal/worker"
)

func main() {
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error(), log.FieldBackend, bcfg.Type.String())
		os.Exit(1)
	}

	resolver := identity.ContextResolver{Fallback: bcfg.DemoOrgID}
	dashboard := aggregator.NewDashboard(result.Backend, resolver, aggregator.DashboardConfig{
		SnapshotTTL:  cfg.SnapshotTTL,
		TrendTTL:     cfg.TrendTTL,
		MaxEntries:   cfg.CacheMaxEntries,
		FetchTimeout: cfg.FetchTimeout,
	}, logger)

	caches := cache.NewManager(logger)
	dashboard.RegisterCaches(caches)
	caches.StartCleanup(cfg.CacheCleanupInterval)

	// AMQP is optional: without it writes still invalidate this replica.
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, cross-replica invalidation disabled", log.FieldError, err.Error())
		} else {
			publisher = amqpClient
		}
	}

	contributions := services.NewContributionService(result.Backend, dashboard, publisher, logger)
	handler := apphttp.NewHandler(dashboard, contributions, resolver)
	srv, err := apphttp.NewServer(":"+cfg.Port, handler, apphttp.ServerConfig{
		AllowedOrigins:     cfg.AllowedOrigins(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxyList(),
	}, logger)
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	if amqpClient != nil {
		go func() {
			if err := worker.NewInvalidationWorker(dashboard, logger).Run(ctx, amqpClient); err != nil {
				logger.Error("Invalidation worker stopped", log.FieldError, err.Error())
			}
		}()
	}

	logger.Info("Starting flock server", "port", cfg.Port, log.FieldBackend, bcfg.Type.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
