// Package overpass queries OpenStreetMap points of interest through the
// Overpass API.
package overpass

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client searches OSM points of interest inside a bounding box.
type Client interface {
	// Search returns all named amenity/shop/office POIs inside the box.
	Search(ctx context.Context, box BBox) ([]POI, error)
}

// BBox is a south/west/north/east bounding box in degrees, the order
// Overpass QL expects.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// POI is one OSM element with its business-relevant tags flattened.
type POI struct {
	ID          int64
	Name        string
	Category    string // amenity, shop or office value
	Phone       string
	Email       string
	Website     string
	HouseNumber string
	Street      string
	PostalCode  string
	City        string
	Latitude    float64
	Longitude   float64
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the interpreter endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// NewClient creates an Overpass client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		// Area queries can take a while on the public instances.
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
