package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/cache"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/database"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/events"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/api/handlers"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/api/middleware"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/api/routes"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/providers"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
	"github.com/zatekoja/Providerbookabilitydesign/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry pipelines
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: without it the engine serves from the materialized
	// snapshot and live recomputes, just without the response cache or events
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Adapters
	payerAdapter := database.NewPayerAdapter(pgClient)
	providerAdapter := database.NewProviderAdapter(pgClient)
	contractAdapter := database.NewContractAdapter(pgClient)
	supervisionAdapter := database.NewSupervisionAdapter(pgClient)
	entryAdapter := database.NewBookableEntryAdapter(pgClient)
	serviceInstanceAdapter := database.NewServiceInstanceAdapter(pgClient)
	availabilityAdapter := database.NewAvailabilityAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	credentialingAdapter := database.NewCredentialingAdapter(pgClient)

	// Services
	catalogService := services.NewCatalogService(serviceInstanceAdapter)
	bookabilityService := services.NewBookabilityService(
		payerAdapter,
		contractAdapter,
		supervisionAdapter,
		entryAdapter,
		cacheProvider,
		metrics,
		cfg.Engine.BookabilityCacheTTL,
	)
	availabilityService := services.NewAvailabilityService(availabilityAdapter)
	slotService := services.NewSlotService(
		catalogService,
		bookabilityService,
		availabilityService,
		appointmentAdapter,
		metrics,
		cfg.Engine.BookingLeadTime,
		cfg.Engine.SlotBuffer,
	)
	bookingService := services.NewBookingService(
		catalogService,
		bookabilityService,
		providerAdapter,
		appointmentAdapter,
		metrics,
		cfg.Engine.BookingLeadTime,
	)
	credentialingService := services.NewCredentialingService(
		credentialingAdapter,
		contractAdapter,
		providerAdapter,
		eventBus,
	)
	futureWindow := time.Duration(cfg.Engine.FutureAcceptanceWindowDays) * 24 * time.Hour
	payerService := services.NewPayerService(payerAdapter, futureWindow)

	// Event-driven snapshot refresh
	var refreshListener *services.RefreshListener
	if eventBus != nil && cacheProvider != nil {
		refreshListener = services.NewRefreshListener(bookabilityService, eventBus, cacheProvider)
		if err := refreshListener.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start refresh listener")
		}
	}

	// Handlers
	bookabilityHandler := handlers.NewBookabilityHandler(bookabilityService, cfg.Engine.ReconcileSampleSize)
	slotHandler := handlers.NewSlotHandler(slotService)
	appointmentHandler := handlers.NewAppointmentHandler(bookingService)
	credentialingHandler := handlers.NewCredentialingHandler(credentialingService, credentialingAdapter)
	payerHandler := handlers.NewPayerHandler(payerService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		bookabilityHandler,
		slotHandler,
		appointmentHandler,
		credentialingHandler,
		payerHandler,
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if refreshListener != nil {
		refreshListener.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
