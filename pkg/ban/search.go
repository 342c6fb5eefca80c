package ban

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// featureCollection is the GeoJSON response shape shared by /search and
// /reverse.
type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
		Properties struct {
			HouseNumber string  `json:"housenumber"`
			Street      string  `json:"street"`
			Name        string  `json:"name"`
			PostCode    string  `json:"postcode"`
			City        string  `json:"city"`
			Score       float64 `json:"score"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *client) Search(ctx context.Context, query string, bias *Point) (*Result, error) {
	params := url.Values{
		"q":     {query},
		"limit": {"1"},
	}
	if bias != nil {
		params.Set("lat", strconv.FormatFloat(bias.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(bias.Lng, 'f', -1, 64))
	}
	return c.get(ctx, "/search/", params)
}

func (c *client) Reverse(ctx context.Context, lat, lng float64) (*Result, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	return c.get(ctx, "/reverse/", params)
}

func (c *client) get(ctx context.Context, path string, params url.Values) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ban: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ban: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ban: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ban: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ban: read body")
	}

	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "ban: parse response")
	}

	if len(fc.Features) == 0 {
		return &Result{Matched: false}, nil
	}

	f := fc.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return &Result{Matched: false}, nil
	}

	street := f.Properties.Street
	if street == "" {
		street = f.Properties.Name
	}
	return &Result{
		Latitude:    f.Geometry.Coordinates[1],
		Longitude:   f.Geometry.Coordinates[0],
		HouseNumber: f.Properties.HouseNumber,
		Street:      street,
		PostalCode:  f.Properties.PostCode,
		City:        f.Properties.City,
		Score:       f.Properties.Score,
		Matched:     true,
	}, nil
}
