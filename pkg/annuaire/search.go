package annuaire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

type searchResponse struct {
	Results []struct {
		Name       string `json:"nom_complet"`
		SIREN      string `json:"siren"`
		Dirigeants []struct {
			Nom     string `json:"nom"`
			Prenoms string `json:"prenoms"`
		} `json:"dirigeants"`
		Siege struct {
			SIRET        string  `json:"siret"`
			IndustryCode string  `json:"activite_principale"`
			Latitude     string  `json:"latitude"`
			Longitude    string  `json:"longitude"`
			Address      string  `json:"adresse"`
			GeoScore     float64 `json:"geo_score"`
		} `json:"siege"`
	} `json:"results"`
	TotalPages int `json:"total_pages"`
}

func (c *client) Near(ctx context.Context, lat, lng, radiusKm float64) ([]Company, error) {
	params := url.Values{
		"lat":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"long":     {strconv.FormatFloat(lng, 'f', -1, 64)},
		"radius":   {strconv.FormatFloat(radiusKm, 'f', -1, 64)},
		"per_page": {"25"},
	}
	return c.search(ctx, "/near_point", params)
}

func (c *client) Search(ctx context.Context, name string) ([]Company, error) {
	params := url.Values{
		"q":        {name},
		"per_page": {"25"},
	}
	return c.search(ctx, "/search", params)
}

func (c *client) search(ctx context.Context, path string, params url.Values) ([]Company, error) {
	var companies []Company

	// The API pages its results; walk every page.
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))

		parsed, err := c.getPage(ctx, path, params)
		if err != nil {
			return nil, err
		}

		for _, r := range parsed.Results {
			company := Company{
				Name:         r.Name,
				SIREN:        r.SIREN,
				SIRET:        r.Siege.SIRET,
				IndustryCode: r.Siege.IndustryCode,
				Address:      r.Siege.Address,
			}
			for _, d := range r.Dirigeants {
				full := d.Prenoms
				if full != "" && d.Nom != "" {
					full += " "
				}
				full += d.Nom
				if full != "" {
					company.Officers = append(company.Officers, full)
				}
			}
			// Coordinates arrive as strings; leave them zero when absent
			// or malformed.
			if lat, err := strconv.ParseFloat(r.Siege.Latitude, 64); err == nil {
				company.Latitude = lat
			}
			if lng, err := strconv.ParseFloat(r.Siege.Longitude, 64); err == nil {
				company.Longitude = lng
			}
			companies = append(companies, company)
		}

		if page >= parsed.TotalPages {
			break
		}
	}
	return companies, nil
}

func (c *client) getPage(ctx context.Context, path string, params url.Values) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "annuaire: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "annuaire: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "annuaire: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("annuaire: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "annuaire: read body")
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "annuaire: parse response")
	}
	return &parsed, nil
}
