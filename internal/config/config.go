package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fusion   FusionConfig   `yaml:"fusion" mapstructure:"fusion"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	BAN      BANConfig      `yaml:"ban" mapstructure:"ban"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Annuaire AnnuaireConfig `yaml:"annuaire" mapstructure:"annuaire"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// FusionConfig holds the matching and filtering thresholds.
type FusionConfig struct {
	ProximityM        float64 `yaml:"proximity_m" mapstructure:"proximity_m"`
	NameSimilarity    float64 `yaml:"name_similarity" mapstructure:"name_similarity"`
	MinQualityScore   int     `yaml:"min_quality_score" mapstructure:"min_quality_score"`
	ZoneTolerance     float64 `yaml:"zone_tolerance" mapstructure:"zone_tolerance"`
	AllowGeoOnlyMatch bool    `yaml:"allow_geo_only_match" mapstructure:"allow_geo_only_match"`
}

// StoreConfig configures the run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BANConfig holds address-base geocoder settings.
type BANConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OverpassConfig holds Overpass API settings.
type OverpassConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnnuaireConfig holds company registry API settings.
type AnnuaireConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fusion.proximity_m", 50.0)
	v.SetDefault("fusion.name_similarity", 0.55)
	v.SetDefault("fusion.min_quality_score", 3)
	v.SetDefault("fusion.zone_tolerance", 1.10)
	v.SetDefault("fusion.allow_geo_only_match", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("ban.base_url", "https://api-adresse.data.gouv.fr")
	v.SetDefault("ban.rate_limit", 40.0)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("annuaire.base_url", "https://recherche-entreprises.api.gouv.fr")
	v.SetDefault("annuaire.rate_limit", 7.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
