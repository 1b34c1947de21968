package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solarchat/backend/config"
	httpDelivery "github.com/solarchat/backend/internal/delivery/http"
	"github.com/solarchat/backend/internal/domain"
	"github.com/solarchat/backend/internal/infrastructure/cache"
	"github.com/solarchat/backend/internal/infrastructure/catalog"
	"github.com/solarchat/backend/internal/infrastructure/openai"
	"github.com/solarchat/backend/internal/infrastructure/platform"
	"github.com/solarchat/backend/internal/infrastructure/prompts"
	"github.com/solarchat/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting SolarChat Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Enable debug logging in development environment
	debug := cfg.Server.Environment == "development"

	// Initialize infrastructure dependencies
	var cacheRepo domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Cache.RedisAddr, err)
		}
		defer redisCache.Close()
		cacheRepo = redisCache
		log.Printf("Redis cache connected: %s", cfg.Cache.RedisAddr)
	} else {
		cacheRepo = cache.NewMemoryCache()
	}
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Catalog.EmbeddingModel)
	log.Printf("OpenAI models: chat=%s, compare=%s, storage=%s, embeddings=%s",
		cfg.OpenAI.ModelChat,
		cfg.OpenAI.ModelCompare,
		cfg.OpenAI.ModelRecommendation,
		cfg.Catalog.EmbeddingModel)

	catalogClient := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Collection, openaiClient)
	log.Printf("Catalog: %s (collection: %s)", cfg.Catalog.URL, cfg.Catalog.Collection)

	platformClient := platform.NewClient(cfg.Platform.URL, cfg.Platform.APIKey, cacheRepo, cfg.Cache.TTL)
	if cfg.Platform.APIKey != "" {
		log.Printf("Platform API configured: %s", cfg.Platform.URL)
	} else {
		log.Printf("WARNING: Platform API configured: %s (key: NOT CONFIGURED - pricing lookups will fail!)", cfg.Platform.URL)
	}

	promptStore, err := prompts.NewStore(cfg.Prompts.File)
	if err != nil {
		log.Fatalf("Failed to load prompts from %s: %v", cfg.Prompts.File, err)
	}
	defer promptStore.Close()
	if err := promptStore.Watch(); err != nil {
		log.Printf("WARNING: prompt file watching disabled: %v", err)
	}
	log.Printf("Prompts: %s", cfg.Prompts.File)

	// Initialize usecase layer
	searchService := usecase.NewSearchService(catalogClient, usecase.SearchServiceConfig{
		MaxResults:          cfg.Search.MaxResults,
		MinScore:            cfg.Search.MinScore,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		EnableDebugLogging:  debug,
	})

	specNormalizer := usecase.NewSpecNormalizer(debug)
	contextFormatter := usecase.NewProductContextFormatter(specNormalizer)

	advisorService := usecase.NewAdvisorService(searchService, openaiClient, promptStore, contextFormatter, usecase.AdvisorServiceConfig{
		ChatModel:          cfg.OpenAI.ModelChat,
		MaxResults:         cfg.Search.MaxResults,
		EnableDebugLogging: debug,
	})

	compareService := usecase.NewCompareService(catalogClient, platformClient, openaiClient, promptStore, contextFormatter, nil, nil, usecase.CompareServiceConfig{
		CompareModel:       cfg.OpenAI.ModelCompare,
		EnableDebugLogging: debug,
	})

	storageService := usecase.NewStorageService(searchService, openaiClient, promptStore, contextFormatter, usecase.StorageServiceConfig{
		Model:              cfg.OpenAI.ModelRecommendation,
		EnableDebugLogging: debug,
	})

	log.Printf("Search: max_results=%d, min_score=%.2f, similarity_threshold=%.2f",
		cfg.Search.MaxResults,
		cfg.Search.MinScore,
		cfg.Search.SimilarityThreshold)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		searchService,
		advisorService,
		compareService,
		storageService,
		specNormalizer,
		platformClient,
		promptStore,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server. Completion calls can run long, so the write timeout
	// is generous.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Shut down cleanly on SIGINT/SIGTERM so in-flight chat turns finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Printf("Server stopped")
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
