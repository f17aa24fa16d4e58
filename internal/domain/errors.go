package domain

import "errors"

var (
	// ErrMissingQuery is returned when a recommendation is requested without query text
	ErrMissingQuery = errors.New("missing 'query' field")

	// ErrMalformedCatalogEntry is returned when a catalog record lacks a required field
	ErrMalformedCatalogEntry = errors.New("malformed catalog entry")

	// ErrCatalogUnavailable is returned when the catalog source cannot be read
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
