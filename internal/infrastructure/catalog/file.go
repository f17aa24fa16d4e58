package catalog

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/metrics"
)

const sourceFile = "file"

// FileRepository reads the catalog from a JSON array of records on disk.
// The file is re-read on every call; caching is the caller's concern.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository over the JSON file at path
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// ListProducts implements domain.CatalogRepository
func (r *FileRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := r.ReadRecords(ctx)
	metrics.RecordCatalogLoad(sourceFile, err)
	if err != nil {
		return nil, err
	}
	return MapRecords(sourceFile, records), nil
}

// ReadRecords decodes the raw records without validating them
func (r *FileRepository) ReadRecords(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", r.path, err)
	}

	return records, nil
}
