package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/cache"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/database"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/events"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	"github.com/zatekoja/Providerbookabilitydesign/backend/pkg/config"
)

// The refresher keeps materialized bookability fresh: it consumes mutation
// events for immediate refreshes and runs a periodic reconciliation sweep to
// catch anything the events missed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-refresher", cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	bookabilityService := services.NewBookabilityService(
		database.NewPayerAdapter(pgClient),
		database.NewContractAdapter(pgClient),
		database.NewSupervisionAdapter(pgClient),
		database.NewBookableEntryAdapter(pgClient),
		cacheProvider,
		metrics,
		cfg.Engine.BookabilityCacheTTL,
	)

	listener := services.NewRefreshListener(bookabilityService, eventBus, cacheProvider)
	if err := listener.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start refresh listener")
	}
	defer listener.Stop()

	// Periodic reconciliation: sample payers and compare the materialized
	// snapshot against a live recompute
	go func() {
		ticker := time.NewTicker(cfg.Engine.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				divergences, err := bookabilityService.Reconcile(ctx, cfg.Engine.ReconcileSampleSize, time.Now())
				if err != nil {
					log.Error().Err(err).Msg("reconciliation sweep failed")
					continue
				}
				if len(divergences) > 0 {
					log.Warn().Int("divergences", len(divergences)).
						Msg("reconciliation found divergent payers")
				}
			}
		}
	}()

	log.Info().Dur("reconcile_interval", cfg.Engine.ReconcileInterval).
		Int("sample_size", cfg.Engine.ReconcileSampleSize).
		Msg("refresher started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("refresher shutting down")
}
