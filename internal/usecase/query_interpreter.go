package usecase

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// budgetPattern matches phrases like "under 60000", "below 45000rs", "less than 1500".
// The amount may carry a suffix but must not run on into more digits.
var budgetPattern = regexp.MustCompile(`\b(?:under|below|less than)\s+(\d{4,6})(?:\D|$)`)

// QueryInterpreter turns free-text shopper queries into a QueryIntent
type QueryInterpreter struct {
	vocabulary         Vocabulary
	brandsByPriority   []string
	enableDebugLogging bool
}

// NewQueryInterpreter creates an interpreter over the given vocabulary.
// Brand priority is longest keyword first, ties broken lexicographically.
func NewQueryInterpreter(vocabulary Vocabulary, enableDebugLogging bool) *QueryInterpreter {
	v := vocabulary.Normalize()

	brands := slices.Clone(v.Brands)
	slices.SortStableFunc(brands, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	return &QueryInterpreter{
		vocabulary:         v,
		brandsByPriority:   brands,
		enableDebugLogging: enableDebugLogging,
	}
}

// Interpret extracts budget, brand, use-cases, features and sub-category from text.
// It never fails; unrecognized text yields an empty intent.
func (q *QueryInterpreter) Interpret(text string) domain.QueryIntent {
	lower := strings.ToLower(text)

	intent := domain.QueryIntent{
		Budget:          extractBudget(lower),
		Brand:           q.extractBrand(lower),
		MatchedUseCases: containedTerms(lower, q.vocabulary.UseCases),
		MatchedFeatures: containedTerms(lower, q.vocabulary.Features),
		SubCategory:     q.extractSubCategory(lower),
	}

	if q.enableDebugLogging {
		logging.Debug().
			Str("query", text).
			Interface("intent", intent).
			Msg("interpreted query")
	}

	return intent
}

// extractBudget returns the amount from the leftmost budget phrase
func extractBudget(text string) *int {
	match := budgetPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	// At most six digits, so the conversion cannot overflow
	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &amount
}

// extractBrand returns the highest-priority brand contained in text in display form
func (q *QueryInterpreter) extractBrand(text string) string {
	for _, brand := range q.brandsByPriority {
		if strings.Contains(text, brand) {
			// Casers are stateful and must not be shared across goroutines
			return cases.Title(language.English).String(brand)
		}
	}
	return ""
}

// extractSubCategory returns the canonical name of the first contained keyword
func (q *QueryInterpreter) extractSubCategory(text string) string {
	for _, sc := range q.vocabulary.SubCategories {
		if strings.Contains(text, sc.Keyword) {
			return sc.Canonical
		}
	}
	return ""
}

// containedTerms returns every term that is a substring of text, in vocabulary order
func containedTerms(text string, terms []string) []string {
	matches := []string{}
	for _, term := range terms {
		if strings.Contains(text, term) {
			matches = append(matches, term)
		}
	}
	return matches
}
