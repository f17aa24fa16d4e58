package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	sourceHTTP        = "http"
	defaultMaxRetries = 3

	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// RemoteConfig holds configuration for the remote catalog client
type RemoteConfig struct {
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int

	// BreakerThreshold is the number of consecutive failed loads that opens
	// the circuit. BreakerCooldown is how long it stays open.
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// RemoteRepository fetches the catalog as a JSON array of records from an HTTP endpoint
type RemoteRepository struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	maxRetries  int
	backoff     func(attempt int) time.Duration
	breaker     *gobreaker.CircuitBreaker[[]Record]
}

// NewRemoteRepository creates a new remote catalog client
func NewRemoteRepository(config RemoteConfig) *RemoteRepository {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	burst := config.Burst
	if burst <= 0 {
		burst = 5
	}

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	threshold := config.BreakerThreshold
	if threshold == 0 {
		threshold = defaultBreakerThreshold
	}

	cooldown := config.BreakerCooldown
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}

	return &RemoteRepository{
		httpClient:  &http.Client{Timeout: timeout},
		url:         config.URL,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:  maxRetries,
		backoff:     exponentialBackoff,
		breaker: gobreaker.NewCircuitBreaker[[]Record](gobreaker.Settings{
			Name:         "catalog-http",
			MaxRequests:  1,
			Timeout:      cooldown,
			// A caller giving up says nothing about the endpoint's health
			IsSuccessful: func(err error) bool {
				var abandoned *abandonedLoadError
				return err == nil || errors.As(err, &abandoned)
			},
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("catalog circuit breaker state changed")
			},
		}),
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// ListProducts implements domain.CatalogRepository
func (c *RemoteRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := c.breaker.Execute(func() ([]Record, error) {
		records, err := c.fetchRecords(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedLoadError{err: err}
		}
		return records, err
	})

	var abandoned *abandonedLoadError
	switch {
	case errors.As(err, &abandoned):
		err = abandoned.err
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		err = fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	metrics.RecordCatalogLoad(sourceHTTP, err)
	if err != nil {
		return nil, err
	}
	return MapRecords(sourceHTTP, records), nil
}

// abandonedLoadError marks a load cut short by the caller's own context
type abandonedLoadError struct {
	err error
}

func (e *abandonedLoadError) Error() string { return e.err.Error() }
func (e *abandonedLoadError) Unwrap() error { return e.err }

func (c *RemoteRepository) fetchRecords(ctx context.Context) ([]Record, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		records, retry, err := c.fetchOnce(ctx)
		if err == nil {
			logging.Debug().Str("url", c.url).Int("records", len(records)).Msg("fetched remote catalog")
			return records, nil
		}

		lastErr = err
		if !retry {
			return nil, err
		}

		logging.Warn().Err(err).Int("attempt", attempt).Str("url", c.url).Msg("remote catalog request failed")

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: all %d attempts failed: %v", domain.ErrCatalogUnavailable, c.maxRetries, lastErr)
}

// fetchOnce performs a single request and reports whether a failure is worth retrying
func (c *RemoteRepository) fetchOnce(ctx context.Context) ([]Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ProductFinder/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return records, false, nil
}
