package domain

// QueryIntent is the structured reading of a shopper's free-text query.
// Empty strings and a nil Budget mean the constraint is absent.
type QueryIntent struct {
	Budget          *int     `json:"budget"`
	Brand           string   `json:"brand,omitempty"`
	MatchedFeatures []string `json:"features"`
	MatchedUseCases []string `json:"use_case"`
	SubCategory     string   `json:"sub_category,omitempty"`
	Category        string   `json:"category,omitempty"`
}

// WithOverrides returns a copy of the intent where non-empty explicit
// category and sub-category selections replace the inferred values.
func (q QueryIntent) WithOverrides(category, subCategory string) QueryIntent {
	if category != "" {
		q.Category = category
	}
	if subCategory != "" {
		q.SubCategory = subCategory
	}
	return q
}

// HasBudget reports whether a budget constraint is active
func (q QueryIntent) HasBudget() bool {
	return q.Budget != nil
}

// RecommendRequest represents a recommendation request from the storefront
type RecommendRequest struct {
	Query       string `json:"query"`
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
}
