package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/metrics"

	_ "modernc.org/sqlite"
)

const sourceSQLite = "sqlite"

const productSchema = `
CREATE TABLE IF NOT EXISTS product (
	id           INTEGER PRIMARY KEY,
	name         TEXT    NOT NULL,
	category     TEXT    NOT NULL,
	sub_category TEXT,
	brand        TEXT,
	price        INTEGER NOT NULL,
	features     TEXT,
	use_case     TEXT,
	size         TEXT
)`

// SQLiteRepository reads and imports the catalog stored in a SQLite product table.
// Tag lists are stored comma-separated.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the catalog database at path and ensures the schema
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	// Every connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(productSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(10000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + params.Encode()
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ListProducts implements domain.CatalogRepository. Products are returned in id order.
func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := r.listRecords(ctx)
	metrics.RecordCatalogLoad(sourceSQLite, err)
	if err != nil {
		return nil, err
	}
	return MapRecords(sourceSQLite, records), nil
}

func (r *SQLiteRepository) listRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, sub_category, brand, price, features, use_case, size
		FROM product
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id                                   int64
			name, category, brand                sql.NullString
			subCategory, features, useCase, size sql.NullString
			price                                sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &category, &subCategory, &brand, &price, &features, &useCase, &size); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		record := Record{
			ID:          id,
			Name:        name.String,
			Category:    category.String,
			SubCategory: nullableString(subCategory),
			Brand:       brand.String,
			Features:    Tags(SplitTags(features.String)),
			UseCase:     Tags(SplitTags(useCase.String)),
			Size:        nullableString(size),
		}
		if price.Valid {
			p := int(price.Int64)
			record.Price = &p
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return records, nil
}

// ImportResult summarizes an import run
type ImportResult struct {
	Imported int
	Skipped  int
	Batches  int
}

// Import inserts records in transactions of batchSize, skipping malformed ones.
// Records with a non-zero ID replace any existing row with that ID.
func (r *SQLiteRepository) Import(ctx context.Context, records []Record, batchSize int) (ImportResult, error) {
	if batchSize <= 0 {
		batchSize = 10
	}

	var result ImportResult
	totalBatches := (len(records) + batchSize - 1) / batchSize

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		imported, skipped, err := r.importBatch(ctx, records[start:end])
		if err != nil {
			return result, fmt.Errorf("import batch %d of %d: %w", result.Batches+1, totalBatches, err)
		}

		result.Imported += imported
		result.Skipped += skipped
		result.Batches++

		logging.Info().
			Int("batch", result.Batches).
			Int("batches", totalBatches).
			Int("imported", imported).
			Int("skipped", skipped).
			Msg("imported catalog batch")
	}

	return result, nil
}

func (r *SQLiteRepository) importBatch(ctx context.Context, batch []Record) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO product (id, name, category, sub_category, brand, price, features, use_case, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, err
	}
	defer stmt.Close()

	imported, skipped := 0, 0
	for _, record := range batch {
		if err := record.Validate(); err != nil {
			metrics.CatalogMalformedEntries.WithLabelValues(sourceSQLite).Inc()
			logging.Warn().Str("name", record.Name).Err(err).Msg("skipping catalog entry on import")
			skipped++
			continue
		}

		var id interface{}
		if record.ID > 0 {
			id = record.ID
		}

		_, err := stmt.ExecContext(ctx,
			id,
			record.Name,
			strings.TrimSpace(record.Category),
			record.SubCategory,
			record.Brand,
			*record.Price,
			JoinTags(record.Features),
			JoinTags(record.UseCase),
			record.Size,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("insert %q: %w", record.Name, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return imported, skipped, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	s := ns.String
	return &s
}
