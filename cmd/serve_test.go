package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscope/prospect-cli/internal/config"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/store"
)

// nopStore satisfies store.Store for handler tests without persistence.
type nopStore struct{}

func (nopStore) CreateRun(context.Context, *model.Run) error { return nil }
func (nopStore) UpdateRunStatus(context.Context, string, model.RunStatus) error {
	return nil
}
func (nopStore) GetRun(context.Context, string) (*model.Run, error) {
	return nil, store.ErrRunNotFound
}
func (nopStore) ListRuns(context.Context, store.RunFilter) ([]model.Run, error) {
	return nil, nil
}
func (nopStore) SaveOutput(context.Context, string, *model.RunResult, []model.FusedRecord, []model.Rejection) error {
	return nil
}
func (nopStore) GetOutput(context.Context, string) ([]model.FusedRecord, []model.Rejection, error) {
	return nil, nil, nil
}
func (nopStore) Migrate(context.Context) error { return nil }
func (nopStore) Close() error                  { return nil }

func withTestConfig(t *testing.T) {
	t.Helper()
	orig := cfg
	cfg = &config.Config{
		Fusion: config.FusionConfig{
			ProximityM:      50,
			NameSimilarity:  0.55,
			MinQualityScore: 3,
			ZoneTolerance:   1.10,
		},
	}
	t.Cleanup(func() { cfg = orig })
}

func TestHandleFuse_AcceptsAndRejects(t *testing.T) {
	withTestConfig(t)

	body := `{
		"params": {
			"center": {"lat": 48.8566, "lng": 2.3522},
			"radius_m": 1000
		},
		"directory": [{
			"street_number": "12",
			"street_name": "rue de la Paix",
			"postal_code": "75002",
			"city": "Paris",
			"phone": "0142000000",
			"title": "Boulangerie Martin",
			"geocode": {"lat": 48.8566, "lng": 2.3522}
		}],
		"pois": [{
			"name": "Boulangerie Martin",
			"company_id": "123456789",
			"coordinates": {"lat": 48.8567, "lng": 2.3522}
		}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/v1/fuse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleFuse(nopStore{})(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp fuseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, model.RunStatusComplete, resp.Run.Status)
	require.Len(t, resp.Accepted, 1)
	assert.Equal(t, "Boulangerie Martin", resp.Accepted[0].Name)
	assert.Empty(t, resp.Rejected)

	// Config thresholds backfill the zero-valued params.
	assert.InDelta(t, 50.0, resp.Run.Params.ProximityM, 0.001)
	assert.InDelta(t, 0.55, resp.Run.Params.NameSimilarity, 0.001)
}

func TestHandleFuse_BadBody(t *testing.T) {
	withTestConfig(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/fuse", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handleFuse(nopStore{})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFuse_InvalidParams(t *testing.T) {
	withTestConfig(t)

	// Radius is required; zero gets rejected by pipeline validation.
	req := httptest.NewRequest(http.MethodPost, "/v1/fuse",
		strings.NewReader(`{"params": {"center": {"lat": 48.85, "lng": 2.35}}}`))
	rec := httptest.NewRecorder()
	handleFuse(nopStore{})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
