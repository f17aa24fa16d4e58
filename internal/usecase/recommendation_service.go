package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/metrics"
)

const catalogCacheKey = "catalog:snapshot"

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	Vocabulary         Vocabulary
	Scoring            ScoringConfig
	CatalogTTL         time.Duration
	EnableDebugLogging bool
}

// Explanation is a ranked result together with the intent that produced it
type Explanation struct {
	Intent  domain.QueryIntent
	Results []domain.ScoredProduct
}

// RecommendationService runs the interpret -> override -> rank pipeline
// against a cached catalog snapshot
type RecommendationService struct {
	cache       domain.CacheRepository
	catalog     domain.CatalogRepository
	interpreter *QueryInterpreter
	filter      *ScoringFilter
	catalogTTL  time.Duration
}

// NewRecommendationService creates a new recommendation service with dependencies.
// A nil cache disables snapshot caching.
func NewRecommendationService(
	cache domain.CacheRepository,
	catalog domain.CatalogRepository,
	config RecommendationServiceConfig,
) *RecommendationService {
	vocabulary := config.Vocabulary
	if len(vocabulary.Brands) == 0 && len(vocabulary.UseCases) == 0 &&
		len(vocabulary.Features) == 0 && len(vocabulary.SubCategories) == 0 {
		vocabulary = DefaultVocabulary()
	}

	catalogTTL := config.CatalogTTL
	if catalogTTL <= 0 {
		catalogTTL = 5 * time.Minute
	}

	return &RecommendationService{
		cache:       cache,
		catalog:     catalog,
		interpreter: NewQueryInterpreter(vocabulary, config.EnableDebugLogging),
		filter:      NewScoringFilter(config.Scoring),
		catalogTTL:  catalogTTL,
	}
}

// Recommend returns the catalog products matching the request, best first.
// Flow: validate -> interpret -> apply explicit filters -> load catalog -> rank
func (s *RecommendationService) Recommend(ctx context.Context, request *domain.RecommendRequest) ([]domain.Product, error) {
	explanation, err := s.Explain(ctx, request)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(explanation.Results))
	for _, sp := range explanation.Results {
		products = append(products, sp.Product)
	}
	return products, nil
}

// Explain runs the same pipeline as Recommend and keeps the intent and scores
func (s *RecommendationService) Explain(ctx context.Context, request *domain.RecommendRequest) (*Explanation, error) {
	start := time.Now()

	if request == nil || strings.TrimSpace(request.Query) == "" {
		metrics.RecordRecommendation(metrics.OutcomeMissingQuery, time.Since(start), 0)
		return nil, domain.ErrMissingQuery
	}

	intent := s.Interpret(request)

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		metrics.RecordRecommendation(metrics.OutcomeCatalogError, time.Since(start), 0)
		logging.Ctx(ctx).Error().Err(err).Msg("catalog load failed")
		return nil, err
	}

	results := s.filter.RankScored(intent, catalog)

	outcome := metrics.OutcomeServed
	if len(results) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordRecommendation(outcome, time.Since(start), len(results))

	logging.Ctx(ctx).Info().
		Str("query", request.Query).
		Int("catalog_size", len(catalog)).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation served")

	return &Explanation{Intent: intent, Results: results}, nil
}

// Interpret reads the query text and applies the caller's explicit filters,
// which always take precedence over inferred values
func (s *RecommendationService) Interpret(request *domain.RecommendRequest) domain.QueryIntent {
	return s.interpreter.
		Interpret(request.Query).
		WithOverrides(strings.TrimSpace(request.Category), strings.TrimSpace(request.SubCategory))
}

// InvalidateCatalog drops the cached snapshot so the next request reloads it
func (s *RecommendationService) InvalidateCatalog(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, catalogCacheKey)
}

// loadCatalog returns the cached snapshot or reads a fresh one from the catalog source
func (s *RecommendationService) loadCatalog(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			if products, ok := cached.([]domain.Product); ok {
				metrics.CatalogCacheHits.Inc()
				return products, nil
			}
		}
		metrics.CatalogCacheMisses.Inc()
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, products, s.catalogTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to cache catalog snapshot")
		}
	}

	return products, nil
}
