package usecase

import (
	"fmt"
	"strings"
)

// SubCategoryKeyword maps a query keyword to its canonical sub-category
type SubCategoryKeyword struct {
	Keyword   string `yaml:"keyword"`
	Canonical string `yaml:"canonical"`
}

// Vocabulary holds the recognized terms used for query interpretation.
// Every list is ordered; SubCategories is scanned in declared order and the
// first contained keyword wins.
type Vocabulary struct {
	Brands        []string             `yaml:"brands"`
	UseCases      []string             `yaml:"use_cases"`
	Features      []string             `yaml:"features"`
	SubCategories []SubCategoryKeyword `yaml:"sub_categories"`
}

// DefaultVocabulary returns the built-in electronics vocabulary
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Brands: []string{
			"acer", "apple", "asus", "dell", "hp", "lenovo", "redmi", "vivo",
		},
		UseCases: []string{
			"gaming", "office", "student", "professional",
		},
		Features: []string{
			"long battery",
			"portable",
			"lightweight",
			"high performance",
			"decent performance",
			"rgb keyboard",
			"durable",
			"touchscreen",
			"backlit keyboard",
			"good camera",
			"gaming optimized",
			"premium build",
			"thermal cooling",
			"ultraportable",
			"high refresh rate",
			"2-in-1 design",
			"affordable",
		},
		SubCategories: []SubCategoryKeyword{
			{Keyword: "laptop", Canonical: "laptop"},
			{Keyword: "phone", Canonical: "phone"},
			{Keyword: "mobile", Canonical: "phone"},
			{Keyword: "smartphone", Canonical: "phone"},
			{Keyword: "tablet", Canonical: "tablet"},
			{Keyword: "desktop", Canonical: "desktop"},
			{Keyword: "monitor", Canonical: "monitor"},
		},
	}
}

// Normalize returns a copy with every term trimmed and lowercased and
// duplicates removed, keeping first occurrences in place.
func (v Vocabulary) Normalize() Vocabulary {
	out := Vocabulary{
		Brands:   normalizeTerms(v.Brands),
		UseCases: normalizeTerms(v.UseCases),
		Features: normalizeTerms(v.Features),
	}

	seen := make(map[string]bool, len(v.SubCategories))
	for _, sc := range v.SubCategories {
		keyword := normalizeTag(sc.Keyword)
		if keyword == "" || seen[keyword] {
			continue
		}
		seen[keyword] = true
		out.SubCategories = append(out.SubCategories, SubCategoryKeyword{
			Keyword:   keyword,
			Canonical: normalizeTag(sc.Canonical),
		})
	}

	return out
}

// Validate checks that the vocabulary is usable
func (v Vocabulary) Validate() error {
	for _, sc := range v.SubCategories {
		if strings.TrimSpace(sc.Keyword) == "" {
			return fmt.Errorf("sub-category keyword must not be empty")
		}
		if strings.TrimSpace(sc.Canonical) == "" {
			return fmt.Errorf("sub-category keyword %q has no canonical name", sc.Keyword)
		}
	}
	return nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		t := normalizeTag(term)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// normalizeTag is the single normalization used on both sides of every tag comparison
func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
