package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beautycompare/backend/config"
	httpDelivery "github.com/beautycompare/backend/internal/delivery/http"
	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/infrastructure/cache"
	"github.com/beautycompare/backend/internal/infrastructure/connector"
	"github.com/beautycompare/backend/internal/infrastructure/metrics"
	"github.com/beautycompare/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting BeautyCompare Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache: type=%s ttl=%s max_entries=%d", cfg.Cache.Type, cfg.Cache.TTL, cfg.Cache.MaxEntries)

	// Result cache backend
	var resultCache domain.ResultCache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.TTL, cfg.Cache.MaxEntries)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		resultCache = redisCache
		log.Printf("Redis cache connected: %s", cfg.Cache.RedisURL)
	} else {
		resultCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}

	// Platform connectors, in display order
	connectors := []domain.Connector{
		connector.NewNykaa("", cfg.Scrape.UserAgent),
		connector.NewAmazon("", cfg.Scrape.UserAgent),
		connector.NewTira("", cfg.Scrape.UserAgent),
	}
	for _, c := range connectors {
		log.Printf("Connector registered: %s", c.Name())
	}

	coordinator := usecase.NewCoordinator(connectors, cfg.Scrape.Timeout)

	matcher := usecase.NewMatchingService(usecase.MatchConfig{
		Threshold:          cfg.Matching.Threshold,
		EnableDebugLogging: cfg.Matching.Debug,
	})
	log.Printf("Matching: threshold=%.0f, debug=%v", cfg.Matching.Threshold, cfg.Matching.Debug)

	m := metrics.New()

	searchService := usecase.NewSearchService(resultCache, coordinator, matcher, m)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, metrics.Handler())

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
