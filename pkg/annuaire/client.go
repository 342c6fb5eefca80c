// Package annuaire looks up French company registry entries via the
// Recherche d'Entreprises API (recherche-entreprises.api.gouv.fr).
package annuaire

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client searches the public company registry.
type Client interface {
	// Near returns establishments registered around a point.
	Near(ctx context.Context, lat, lng, radiusKm float64) ([]Company, error)

	// Search looks up companies by name.
	Search(ctx context.Context, name string) ([]Company, error)
}

// Company is one registry establishment.
type Company struct {
	Name         string
	SIREN        string // company identifier
	SIRET        string // establishment identifier
	IndustryCode string // NAF/APE activity code
	Officers     []string
	Latitude     float64
	Longitude    float64
	Address      string
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

const defaultBaseURL = "https://recherche-entreprises.api.gouv.fr"

// NewClient creates a registry client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(7, 7), // documented cap: 7 req/s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
