// Package ban provides address geocoding via the Base Adresse Nationale
// (api-adresse.data.gouv.fr).
package ban

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes French addresses against the national address base.
type Client interface {
	// Search geocodes a free-form address query, optionally biased toward
	// a point when bias is non-nil.
	Search(ctx context.Context, query string, bias *Point) (*Result, error)

	// Reverse resolves the closest address to a coordinate pair.
	Reverse(ctx context.Context, lat, lng float64) (*Result, error)
}

// Point is a latitude/longitude pair used to bias search results.
type Point struct {
	Lat float64
	Lng float64
}

// Result holds one geocoding match.
type Result struct {
	Latitude    float64
	Longitude   float64
	HouseNumber string
	Street      string
	PostalCode  string
	City        string
	Score       float64 // BAN match confidence in [0,1]
	Matched     bool
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

const defaultBaseURL = "https://api-adresse.data.gouv.fr"

// NewClient creates a BAN client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(40, 40), // documented BAN cap: 50 req/s per IP
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
