package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/noamgl/basketcompare/backend/internal/adapters/cache"
	"github.com/noamgl/basketcompare/backend/internal/adapters/database"
	"github.com/noamgl/basketcompare/backend/internal/adapters/pricetable"
	"github.com/noamgl/basketcompare/backend/internal/adapters/providers/geolocation"
	"github.com/noamgl/basketcompare/backend/internal/adapters/providers/shopping"
	"github.com/noamgl/basketcompare/backend/internal/adapters/selection"
	"github.com/noamgl/basketcompare/backend/internal/api/handlers"
	"github.com/noamgl/basketcompare/backend/internal/api/routes"
	"github.com/noamgl/basketcompare/backend/internal/application/services"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/internal/domain/repositories"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/openai"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/postgres"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/redis"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/observability"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/scrape"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("basketcompare-api", cfg.Server.Env)

	// Cache: Redis when reachable, in-process otherwise.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		memCache := cache.NewMemoryAdapter()
		defer memCache.Close()
		cacheProvider = memCache
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("redis cache initialized")
	}

	// Price table: Postgres when configured, TSV file otherwise, or neither.
	var priceTable repositories.PriceTableRepository
	if cfg.Database.Host != "" {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, price table collector disabled")
		} else {
			defer pgClient.Close()
			priceTable = database.NewPriceTableAdapter(pgClient)
			log.Info().Msg("postgres price table initialized")
		}
	}
	if priceTable == nil && cfg.PriceTable.Path != "" {
		fileTable, err := pricetable.NewFileAdapter(cfg.PriceTable.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.PriceTable.Path).Msg("failed to load price table file")
		} else {
			priceTable = fileTable
			log.Info().Int("rows", fileTable.Len()).Msg("file price table loaded")
		}
	}

	// Candidate collectors, in priority order.
	var collectors []providers.CandidateCollector
	if cfg.SerpAPI.APIKey != "" {
		collectors = append(collectors, shopping.NewSerpAPIAdapter(&cfg.SerpAPI, nil))
	} else {
		log.Warn().Msg("SERPAPI_KEY is not set, structured shopping collector disabled")
	}
	collectors = append(collectors, shopping.NewPricezAdapter(&cfg.Pricez, nil))
	if priceTable != nil {
		collectors = append(collectors, shopping.NewPriceTableAdapter(priceTable))
	}

	var geoProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set, using mock geolocation provider")
			geoProvider = geolocation.NewMockGeolocationProvider()
		} else {
			geoProvider = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
		}
	default:
		geoProvider = geolocation.NewMockGeolocationProvider()
	}

	// Services.
	variantService := services.NewVariantService()
	normalizer := services.NewNormalizerService()
	runner := services.NewCollectorRunner(collectors, cacheProvider, cfg.Engine.CacheTTLSeconds)
	enricher := services.NewEnrichmentService(scrape.NewJSONLDFetcher(nil), cfg.Engine.EnrichTopK)
	filter := services.NewPoolFilterService(cfg.Engine.MaxCandidatesPerItem, cfg.Engine.OutlierMinPoolSize, cfg.Engine.ConsensusTolerancePct)
	scorer := services.NewScoringService(cfg.Scoring, cfg.Engine.TrustedSourceWeight)
	localSelector := services.NewSelectionService(scorer)

	var primarySelector providers.SelectionStrategy = localSelector
	if cfg.OpenAI.Enabled {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("openai disabled, using local selector")
		} else {
			primarySelector = selection.NewLLMSelector(openaiClient, cfg.Scoring.NoMatchConfidence)
			log.Info().Str("model", openaiClient.Model()).Msg("llm selector enabled")
		}
	}

	basketService := services.NewBasketService(
		variantService,
		runner,
		normalizer,
		enricher,
		filter,
		scorer,
		primarySelector,
		localSelector,
		cfg.Engine.ConcurrencyLimit,
	)
	locatorService := services.NewStoreLocatorService(geoProvider, cfg.Engine.MaxSupermarkets)

	// Handlers and routes.
	planHandler := handlers.NewPlanHandler(locatorService, basketService, cfg.Engine.DefaultRadiusKm)
	healthHandler := handlers.NewHealthHandler(collectors)
	router := routes.NewRouter(planHandler, healthHandler)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
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

	log.Info().Msg("server exited")
}
