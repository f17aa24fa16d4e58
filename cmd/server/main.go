package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/productfinder/backend/config"
	httpDelivery "github.com/productfinder/backend/internal/delivery/http"
	"github.com/productfinder/backend/internal/infrastructure/cache"
	"github.com/productfinder/backend/internal/infrastructure/catalog"
	"github.com/productfinder/backend/internal/infrastructure/vocabulary"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("catalog_source", cfg.Catalog.Source).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("starting ProductFinder backend")

	vocab, err := vocabulary.LoadFile(cfg.Vocabulary.File)
	if err != nil {
		return err
	}
	logging.Info().
		Int("brands", len(vocab.Brands)).
		Int("use_cases", len(vocab.UseCases)).
		Int("features", len(vocab.Features)).
		Int("sub_category_keywords", len(vocab.SubCategories)).
		Msg("vocabulary loaded")

	// Initialize infrastructure dependencies
	catalogRepo, closeCatalog, err := catalog.Open(catalog.Options{
		Source: cfg.Catalog.Source,
		Path:   cfg.Catalog.Path,
		Remote: catalog.RemoteConfig{
			URL:               cfg.Catalog.URL,
			Timeout:           cfg.Catalog.Timeout,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
			Burst:             cfg.Catalog.Burst,
			MaxRetries:        cfg.Catalog.MaxRetries,
			BreakerThreshold:  cfg.Catalog.BreakerThreshold,
			BreakerCooldown:   cfg.Catalog.BreakerCooldown,
		},
	})
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer closeCatalog()

	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	// Initialize usecase layer
	recommendationService := usecase.NewRecommendationService(
		memoryCache,
		catalogRepo,
		usecase.RecommendationServiceConfig{
			Vocabulary: vocab,
			Scoring: usecase.ScoringConfig{
				BrandBonus:        cfg.Scoring.BrandBonus,
				UseCaseWeight:     cfg.Scoring.UseCaseWeight,
				FeatureWeight:     cfg.Scoring.FeatureWeight,
				BudgetMarginBonus: cfg.Scoring.BudgetMarginBonus,
				BudgetMargin:      cfg.Scoring.BudgetMargin,
			},
			CatalogTTL:         cfg.Cache.TTL,
			EnableDebugLogging: cfg.IsDevelopment(),
		},
	)

	handler := httpDelivery.NewHandler(recommendationService)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
