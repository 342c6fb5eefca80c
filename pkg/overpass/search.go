package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// queryTemplate pulls named nodes and ways tagged as businesses; `out
// center` collapses ways to their centroid so every element carries a
// coordinate pair.
const queryTemplate = `[out:json][timeout:60];
(
  node["name"]["amenity"](%[1]s);
  node["name"]["shop"](%[1]s);
  node["name"]["office"](%[1]s);
  way["name"]["amenity"](%[1]s);
  way["name"]["shop"](%[1]s);
  way["name"]["office"](%[1]s);
);
out center;`

type overpassResponse struct {
	Elements []struct {
		ID     int64   `json:"id"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

func (c *client) Search(ctx context.Context, box BBox) ([]POI, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	query := fmt.Sprintf(queryTemplate, bbox)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}

	pois := make([]POI, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}

		poi := POI{
			ID:          el.ID,
			Name:        el.Tags["name"],
			Category:    category(el.Tags),
			Phone:       firstTag(el.Tags, "phone", "contact:phone"),
			Email:       firstTag(el.Tags, "email", "contact:email"),
			Website:     firstTag(el.Tags, "website", "contact:website"),
			HouseNumber: el.Tags["addr:housenumber"],
			Street:      el.Tags["addr:street"],
			PostalCode:  el.Tags["addr:postcode"],
			City:        el.Tags["addr:city"],
			Latitude:    lat,
			Longitude:   lon,
		}
		if poi.Name == "" {
			continue
		}
		pois = append(pois, poi)
	}
	return pois, nil
}

func category(tags map[string]string) string {
	for _, key := range []string{"amenity", "shop", "office"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}
