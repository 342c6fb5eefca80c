package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 50.0, cfg.Fusion.ProximityM, 0.001)
	assert.InDelta(t, 0.55, cfg.Fusion.NameSimilarity, 0.001)
	assert.Equal(t, 3, cfg.Fusion.MinQualityScore)
	assert.InDelta(t, 1.10, cfg.Fusion.ZoneTolerance, 0.001)
	assert.False(t, cfg.Fusion.AllowGeoOnlyMatch)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospect.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://api-adresse.data.gouv.fr", cfg.BAN.BaseURL)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.BaseURL)
	assert.InDelta(t, 7.0, cfg.Annuaire.RateLimit, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
fusion:
  proximity_m: 75
  min_quality_score: 5
store:
  driver: postgres
  database_url: postgres://localhost/prospect
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 75.0, cfg.Fusion.ProximityM, 0.001)
	assert.Equal(t, 5, cfg.Fusion.MinQualityScore)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.55, cfg.Fusion.NameSimilarity, 0.001)
	assert.InDelta(t, 1.10, cfg.Fusion.ZoneTolerance, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROSPECT_STORE_DRIVER", "postgres")
	t.Setenv("PROSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PROSPECT_FUSION_MIN_QUALITY_SCORE", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Fusion.MinQualityScore)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
