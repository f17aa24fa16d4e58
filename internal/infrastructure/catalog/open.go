package catalog

import (
	"fmt"

	"github.com/productfinder/backend/internal/domain"
)

// Options selects and configures a catalog source
type Options struct {
	Source string // "file", "sqlite" or "http"
	Path   string
	Remote RemoteConfig
}

// Open returns the catalog source selected by opts together with a func
// releasing whatever it holds open
func Open(opts Options) (domain.CatalogRepository, func() error, error) {
	noop := func() error { return nil }

	switch opts.Source {
	case sourceFile:
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("file catalog needs a path")
		}
		return NewFileRepository(opts.Path), noop, nil

	case sourceSQLite:
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("sqlite catalog needs a path")
		}
		repo, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case sourceHTTP:
		if opts.Remote.URL == "" {
			return nil, nil, fmt.Errorf("http catalog needs a URL")
		}
		return NewRemoteRepository(opts.Remote), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", opts.Source)
	}
}
