// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the full configuration of the advisor service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	// CriteriaRegistryPath points at a deployed criteria catalog; empty
	// means the built-in catalog.
	CriteriaRegistryPath string `mapstructure:"criteria_registry_path"`
}

type ServerConfig struct {
	MetricsPort int `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

// GetDSN builds the lib/pq connection string.
func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type ElasticsearchConfig struct {
	Addresses       []string `mapstructure:"addresses"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	PropertiesIndex string   `mapstructure:"properties_index"`
}

// EngineConfig carries every scoring tunable. The decay curves and weight
// split are configuration, not code, so deployments can retune them
// without a release.
type EngineConfig struct {
	Weights WeightsConfig `mapstructure:"weights"`

	// GridCellDegrees is the angular size of a spatial-index cell.
	// 0.01 degrees is roughly one kilometer at the operative latitude.
	GridCellDegrees float64 `mapstructure:"grid_cell_degrees"`

	// CoverageRadiiMeters is the escalating radius ladder; the last value is
	// the maximum radius used in the coverage decay formula.
	CoverageRadiiMeters []float64 `mapstructure:"coverage_radii_meters"`

	// Operative-area centroid used when the profile names no zone.
	CentroidLat                 float64 `mapstructure:"centroid_lat"`
	CentroidLng                 float64 `mapstructure:"centroid_lng"`
	MaxConsideredDistanceMeters float64 `mapstructure:"max_considered_distance_meters"`

	// PriceDecayBand is the fraction of the violated budget boundary over
	// which the price sub-score decays linearly to zero outside the range.
	PriceDecayBand float64 `mapstructure:"price_decay_band"`

	ReservedAvailabilityScore float64 `mapstructure:"reserved_availability_score"`
	TieEpsilon                float64 `mapstructure:"tie_epsilon"`

	CacheCapacity      int           `mapstructure:"cache_capacity"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	CacheSweepInterval time.Duration `mapstructure:"cache_sweep_interval"`

	ScoringWorkers   int           `mapstructure:"scoring_workers"`
	ScoringBatchSize int           `mapstructure:"scoring_batch_size"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MaxResults       int           `mapstructure:"max_results"`
}

type WeightsConfig struct {
	Location     float64 `mapstructure:"location"`
	Price        float64 `mapstructure:"price"`
	Services     float64 `mapstructure:"services"`
	Features     float64 `mapstructure:"features"`
	Availability float64 `mapstructure:"availability"`
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "property-advisor"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.LogFormat == "" {
		cfg.App.LogFormat = "console"
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Elasticsearch.PropertiesIndex == "" {
		cfg.Database.Elasticsearch.PropertiesIndex = "properties"
	}

	e := &cfg.Engine
	if e.Weights == (WeightsConfig{}) {
		e.Weights = WeightsConfig{Location: 0.35, Price: 0.25, Services: 0.20, Features: 0.15, Availability: 0.05}
	}
	if e.GridCellDegrees == 0 {
		e.GridCellDegrees = 0.01
	}
	if len(e.CoverageRadiiMeters) == 0 {
		e.CoverageRadiiMeters = []float64{500, 1000, 2000}
	}
	if e.CentroidLat == 0 && e.CentroidLng == 0 {
		// Santa Cruz de la Sierra, the investor's operative area.
		e.CentroidLat = -17.7833
		e.CentroidLng = -63.1833
	}
	if e.MaxConsideredDistanceMeters == 0 {
		e.MaxConsideredDistanceMeters = 15000
	}
	if e.PriceDecayBand == 0 {
		e.PriceDecayBand = 0.5
	}
	if e.ReservedAvailabilityScore == 0 {
		e.ReservedAvailabilityScore = 0.3
	}
	if e.TieEpsilon == 0 {
		e.TieEpsilon = 1e-6
	}
	if e.CacheCapacity == 0 {
		e.CacheCapacity = 256
	}
	if e.CacheTTL == 0 {
		e.CacheTTL = 15 * time.Minute
	}
	if e.CacheSweepInterval == 0 {
		e.CacheSweepInterval = time.Minute
	}
	if e.ScoringWorkers == 0 {
		e.ScoringWorkers = 8
	}
	if e.ScoringBatchSize == 0 {
		e.ScoringBatchSize = 64
	}
	if e.RequestTimeout == 0 {
		e.RequestTimeout = 5 * time.Second
	}
	if e.MaxResults == 0 {
		e.MaxResults = 100
	}
}

func validateConfig(cfg *Config) error {
	e := cfg.Engine
	if e.GridCellDegrees <= 0 {
		return fmt.Errorf("engine.grid_cell_degrees must be positive")
	}
	if len(e.CoverageRadiiMeters) == 0 {
		return fmt.Errorf("engine.coverage_radii_meters must not be empty")
	}
	for i, r := range e.CoverageRadiiMeters {
		if r <= 0 {
			return fmt.Errorf("engine.coverage_radii_meters[%d] must be positive", i)
		}
		if i > 0 && r <= e.CoverageRadiiMeters[i-1] {
			return fmt.Errorf("engine.coverage_radii_meters must be strictly increasing")
		}
	}
	if e.PriceDecayBand <= 0 {
		return fmt.Errorf("engine.price_decay_band must be positive")
	}
	if e.CacheCapacity <= 0 {
		return fmt.Errorf("engine.cache_capacity must be positive")
	}
	if e.ScoringWorkers <= 0 {
		return fmt.Errorf("engine.scoring_workers must be positive")
	}
	w := e.Weights
	if w.Location < 0 || w.Price < 0 || w.Services < 0 || w.Features < 0 || w.Availability < 0 {
		return fmt.Errorf("engine.weights must be non-negative")
	}
	if w.Location+w.Price+w.Services+w.Features+w.Availability <= 0 {
		return fmt.Errorf("engine.weights must not be all zero")
	}
	return nil
}
