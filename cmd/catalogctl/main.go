package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/infrastructure/catalog"
	"github.com/productfinder/backend/internal/infrastructure/vocabulary"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/usecase"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Fatal().Err(err).Msg("catalogctl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalogctl",
		Usage: "Manage the product catalog and try recommendation queries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (console, json)",
				Value: "console",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import a products JSON file into the SQLite catalog",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the SQLite catalog database",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the products JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products inserted per transaction",
						Value: 10,
					},
				},
			},
			{
				Name:      "recommend",
				Usage:     "Run a query through the recommendation pipeline and print the results as JSON",
				ArgsUsage: "<query>",
				Action:    recommendCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Catalog source (file, sqlite, http)",
						Value: "sqlite",
					},
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Catalog file or database path",
						Value:   "products.db",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Catalog endpoint for the http source",
					},
					&cli.StringFlag{
						Name:  "vocabulary",
						Usage: "Vocabulary YAML file (built-in vocabulary when empty)",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict results to this category",
					},
					&cli.StringFlag{
						Name:  "sub-category",
						Usage: "Restrict results to this sub-category, overriding the query",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print the interpreted intent and per-product scores",
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	logging.Init(logging.Config{
		Level:  c.String("log-level"),
		Format: c.String("log-format"),
		Output: c.App.ErrWriter,
	})
	return nil
}

func importCommand(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := catalog.NewFileRepository(c.String("file")).ReadRecords(ctx)
	if err != nil {
		return err
	}

	repo, err := catalog.OpenSQLite(c.String("db"))
	if err != nil {
		return err
	}
	defer repo.Close()

	result, err := repo.Import(ctx, records, c.Int("batch-size"))
	if err != nil {
		return err
	}

	logging.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("batches", result.Batches).
		Msg("catalog import finished")

	fmt.Fprintf(c.App.Writer, "Imported %d products (%d skipped) in %d batches\n",
		result.Imported, result.Skipped, result.Batches)
	return nil
}

// scoredView is the explain output for a single product
type scoredView struct {
	Product domain.ProductView `json:"product"`
	Score   int                `json:"score"`
}

func recommendCommand(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	query := strings.Join(c.Args().Slice(), " ")

	vocab, err := vocabulary.LoadFile(c.String("vocabulary"))
	if err != nil {
		return err
	}

	repo, closeRepo, err := catalog.Open(catalog.Options{
		Source: c.String("source"),
		Path:   c.String("path"),
		Remote: catalog.RemoteConfig{URL: c.String("url")},
	})
	if err != nil {
		return err
	}
	defer closeRepo()

	service := usecase.NewRecommendationService(nil, repo, usecase.RecommendationServiceConfig{
		Vocabulary:         vocab,
		EnableDebugLogging: c.String("log-level") == "debug",
	})

	request := &domain.RecommendRequest{
		Query:       query,
		Category:    c.String("category"),
		SubCategory: c.String("sub-category"),
	}

	explanation, err := service.Explain(ctx, request)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")

	if !c.Bool("explain") {
		products := make([]domain.Product, 0, len(explanation.Results))
		for _, sp := range explanation.Results {
			products = append(products, sp.Product)
		}
		return enc.Encode(domain.Views(products))
	}

	results := make([]scoredView, 0, len(explanation.Results))
	for _, sp := range explanation.Results {
		results = append(results, scoredView{Product: sp.Product.View(), Score: sp.Score})
	}
	return enc.Encode(struct {
		Intent  domain.QueryIntent `json:"intent"`
		Results []scoredView       `json:"results"`
	}{Intent: explanation.Intent, Results: results})
}
