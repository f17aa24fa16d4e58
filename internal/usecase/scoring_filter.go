package usecase

import (
	"slices"
	"strings"

	"github.com/productfinder/backend/internal/domain"
)

// Default scoring weights
const (
	defaultBrandBonus        = 2    // Every survivor when a brand was requested
	defaultUseCaseWeight     = 1    // Per requested use-case the product carries
	defaultFeatureWeight     = 1    // Per requested feature the product carries
	defaultBudgetMarginBonus = 1    // Product leaves a comfortable margin under budget
	defaultBudgetMargin      = 5000 // Minimum budget - price for the margin bonus
)

// ScoringConfig holds the soft-scoring weights. Non-positive values fall back to defaults.
type ScoringConfig struct {
	BrandBonus        int
	UseCaseWeight     int
	FeatureWeight     int
	BudgetMarginBonus int
	BudgetMargin      int
}

// DefaultScoringConfig returns the standard weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BrandBonus:        defaultBrandBonus,
		UseCaseWeight:     defaultUseCaseWeight,
		FeatureWeight:     defaultFeatureWeight,
		BudgetMarginBonus: defaultBudgetMarginBonus,
		BudgetMargin:      defaultBudgetMargin,
	}
}

// ScoringFilter excludes products failing the intent's hard constraints,
// scores the survivors and ranks them
type ScoringFilter struct {
	config ScoringConfig
}

// NewScoringFilter creates a scoring filter with the given weights
func NewScoringFilter(config ScoringConfig) *ScoringFilter {
	defaults := DefaultScoringConfig()
	if config.BrandBonus <= 0 {
		config.BrandBonus = defaults.BrandBonus
	}
	if config.UseCaseWeight <= 0 {
		config.UseCaseWeight = defaults.UseCaseWeight
	}
	if config.FeatureWeight <= 0 {
		config.FeatureWeight = defaults.FeatureWeight
	}
	if config.BudgetMarginBonus <= 0 {
		config.BudgetMarginBonus = defaults.BudgetMarginBonus
	}
	if config.BudgetMargin <= 0 {
		config.BudgetMargin = defaults.BudgetMargin
	}
	return &ScoringFilter{config: config}
}

// Config returns the effective weights
func (f *ScoringFilter) Config() ScoringConfig {
	return f.config
}

// Rank returns the catalog products matching intent, best first.
// Equal scores keep their catalog order. The catalog is not modified.
func (f *ScoringFilter) Rank(intent domain.QueryIntent, catalog []domain.Product) []domain.Product {
	scored := f.RankScored(intent, catalog)
	products := make([]domain.Product, 0, len(scored))
	for _, sp := range scored {
		products = append(products, sp.Product)
	}
	return products
}

// RankScored is Rank with the score of each surviving product attached
func (f *ScoringFilter) RankScored(intent domain.QueryIntent, catalog []domain.Product) []domain.ScoredProduct {
	wantUseCases := normalizeTerms(intent.MatchedUseCases)
	wantFeatures := normalizeTerms(intent.MatchedFeatures)

	scored := make([]domain.ScoredProduct, 0, len(catalog))
	for _, product := range catalog {
		if !passesHardFilters(intent, product) {
			continue
		}

		score := f.score(intent, wantUseCases, wantFeatures, product)
		if !aboveScoreFloor(score) {
			continue
		}

		scored = append(scored, domain.ScoredProduct{Product: product, Score: score})
	}

	slices.SortStableFunc(scored, func(a, b domain.ScoredProduct) int {
		return b.Score - a.Score
	})

	return scored
}

// Score computes the soft relevance score of a single product. It does not
// apply hard filters; callers are expected to have done so.
func (f *ScoringFilter) Score(intent domain.QueryIntent, product domain.Product) int {
	return f.score(intent, normalizeTerms(intent.MatchedUseCases), normalizeTerms(intent.MatchedFeatures), product)
}

func (f *ScoringFilter) score(intent domain.QueryIntent, wantUseCases, wantFeatures []string, product domain.Product) int {
	score := 0

	// Brand mismatches were already excluded, so every survivor earns the bonus
	if intent.Brand != "" {
		score += f.config.BrandBonus
	}

	score += f.config.UseCaseWeight * countShared(wantUseCases, product.UseCase)
	score += f.config.FeatureWeight * countShared(wantFeatures, product.Features)

	if intent.HasBudget() && *intent.Budget-product.Price >= f.config.BudgetMargin {
		score += f.config.BudgetMarginBonus
	}

	return score
}

// passesHardFilters reports whether product satisfies every active constraint
func passesHardFilters(intent domain.QueryIntent, product domain.Product) bool {
	if intent.Category != "" && !strings.EqualFold(product.Category, intent.Category) {
		return false
	}

	if intent.SubCategory != "" {
		if product.SubCategory == "" || !strings.EqualFold(product.SubCategory, intent.SubCategory) {
			return false
		}
	}

	if intent.HasBudget() && product.Price > *intent.Budget {
		return false
	}

	if intent.Brand != "" && !strings.EqualFold(product.Brand, intent.Brand) {
		return false
	}

	return true
}

// aboveScoreFloor drops products that passed the hard filters without any positive signal
func aboveScoreFloor(score int) bool {
	return score > 0
}

// countShared counts the wanted tags present in the product tags.
// wanted must already be normalized and de-duplicated.
func countShared(wanted, productTags []string) int {
	if len(wanted) == 0 || len(productTags) == 0 {
		return 0
	}

	have := make(map[string]bool, len(productTags))
	for _, tag := range productTags {
		have[normalizeTag(tag)] = true
	}

	count := 0
	for _, tag := range wanted {
		if have[tag] {
			count++
		}
	}
	return count
}
