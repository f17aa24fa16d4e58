// Package catalog provides the catalog sources that feed the recommendation
// pipeline: a JSON file, a SQLite database and a remote HTTP endpoint.
// All of them map raw records through Record so malformed entries are
// rejected the same way regardless of where they come from.
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/metrics"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Tags is a list of free-form tags. In JSON it may be an array of strings
// or a single comma-separated string.
type Tags []string

// UnmarshalJSON accepts null, ["a","b"] or "a,b"
func (t *Tags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTags(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma-separated string: %w", err)
	}
	*t = SplitTags(joined)
	return nil
}

// Record is a raw catalog entry as read from a file, database row or remote feed
type Record struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category" validate:"required"`
	SubCategory *string `json:"sub_category"`
	Brand       string  `json:"brand"`
	Price       *int    `json:"price" validate:"required,min=0"`
	Features    Tags    `json:"features"`
	UseCase     Tags    `json:"use_case"`
	Size        *string `json:"size"`
}

// Validate reports ErrMalformedCatalogEntry when a required field is missing or invalid
func (r Record) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrMalformedCatalogEntry)
	}

	if err := getValidator().Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: field %s failed %q", domain.ErrMalformedCatalogEntry, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrMalformedCatalogEntry, err)
	}

	return nil
}

// ToProduct converts a validated record into a domain product
func (r Record) ToProduct() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		SubCategory: derefString(r.SubCategory),
		Brand:       r.Brand,
		Price:       *r.Price,
		Features:    []string(r.Features),
		UseCase:     []string(r.UseCase),
		Size:        derefString(r.Size),
	}
}

// FromProduct converts a domain product back into a record
func FromProduct(p domain.Product) Record {
	price := p.Price
	return Record{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		SubCategory: optionalString(p.SubCategory),
		Brand:       p.Brand,
		Price:       &price,
		Features:    Tags(p.Features),
		UseCase:     Tags(p.UseCase),
		Size:        optionalString(p.Size),
	}
}

// MapRecords converts records to products, skipping and logging malformed entries.
// Catalog order is preserved.
func MapRecords(source string, records []Record) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	for i, record := range records {
		if err := record.Validate(); err != nil {
			metrics.CatalogMalformedEntries.WithLabelValues(source).Inc()
			logging.Warn().
				Str("source", source).
				Int("index", i).
				Int64("id", record.ID).
				Err(err).
				Msg("skipping catalog entry")
			continue
		}
		products = append(products, record.ToProduct())
	}
	return products
}

// SplitTags splits a comma-separated tag string, dropping empty items
func SplitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return cleanTags(strings.Split(joined, ","))
}

// JoinTags is the inverse of SplitTags
func JoinTags(tags []string) string {
	return strings.Join(cleanTags(tags), ",")
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
