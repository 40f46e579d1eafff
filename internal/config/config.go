package config

import (
	"fmt"
	"os"
	"strconv"
	"route-planner-service/internal/domain"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the route planner server.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Planning limits
	StartAddress string `env:"START_ADDRESS" envDefault:"Calle Callejon de Jesús 1, Posadas, Córdoba, España"`
	MaxStops     int    `env:"MAX_STOPS" envDefault:"200"`
	MaxVehicles  int    `env:"MAX_VEHICLES" envDefault:"2"`

	// Parallel route-detail calls in multi-vehicle plans; 0 means one per vehicle.
	DetailConcurrency int `env:"DETAIL_CONCURRENCY" envDefault:"0"`

	// Geocoding provider (Nominatim)
	NominatimURL       string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	NominatimUserAgent string        `env:"NOMINATIM_USER_AGENT" envDefault:"posadas-route-planner/2.0 (local)"`
	CountryCode        string        `env:"GEOCODE_COUNTRY_CODE" envDefault:"es"`
	Viewbox            string        `env:"GEOCODE_VIEWBOX" envDefault:"-5.15,37.78,-5.06,37.83"`
	GeocodeDelay       time.Duration `env:"GEOCODE_DELAY" envDefault:"500ms"`
	GeocodeRetryDelay  time.Duration `env:"GEOCODE_RETRY_DELAY" envDefault:"300ms"`
	GeocodeTimeout     time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"30s"`
	GeocodeConcurrency int           `env:"GEOCODE_CONCURRENCY" envDefault:"1"`
	GeocodeMaxAttempts int           `env:"GEOCODE_MAX_ATTEMPTS" envDefault:"2"`
	NominatimInterval  time.Duration `env:"NOMINATIM_MIN_INTERVAL" envDefault:"0s"`
	GeocodeLookup      time.Duration `env:"GEOCODE_LOOKUP_TIMEOUT" envDefault:"2m"`

	// Working area
	TownCenterLat float64 `env:"TOWN_CENTER_LAT" envDefault:"37.802"`
	TownCenterLon float64 `env:"TOWN_CENTER_LON" envDefault:"-5.105"`
	TownTolerance float64 `env:"TOWN_TOLERANCE_DEG" envDefault:"0.15"`
	TownCity      string  `env:"TOWN_CITY" envDefault:"Posadas"`
	TownRegion    string  `env:"TOWN_REGION" envDefault:"Córdoba"`
	TownCountry   string  `env:"TOWN_COUNTRY" envDefault:"España"`

	// Road-network engine and solver
	OSRMURL      string        `env:"OSRM_URL" envDefault:"http://localhost:5000"`
	OSRMProfile  string        `env:"OSRM_PROFILE" envDefault:"driving"`
	OSRMTimeout  time.Duration `env:"OSRM_TIMEOUT" envDefault:"60s"`
	VROOMURL     string        `env:"VROOM_URL" envDefault:"http://localhost:3000"`
	VROOMTimeout time.Duration `env:"VROOM_TIMEOUT" envDefault:"120s"`

	// Persistence
	OverridesFile    string `env:"OVERRIDES_FILE" envDefault:"data/geocode_overrides.json"`
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisURL         string `env:"REDIS_URL"`
	SegmentCacheSize int    `env:"SEGMENT_CACHE_SIZE" envDefault:"512"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxStops <= 0 {
		return fmt.Errorf("MAX_STOPS must be positive")
	}

	if c.MaxVehicles <= 0 {
		return fmt.Errorf("MAX_VEHICLES must be positive")
	}

	if c.GeocodeDelay < 0 || c.GeocodeRetryDelay < 0 {
		return fmt.Errorf("GEOCODE_DELAY and GEOCODE_RETRY_DELAY must not be negative")
	}

	if c.GeocodeTimeout <= 0 || c.OSRMTimeout <= 0 || c.VROOMTimeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT, OSRM_TIMEOUT and VROOM_TIMEOUT must be positive")
	}

	if c.GeocodeLookup < c.GeocodeTimeout {
		return fmt.Errorf("GEOCODE_LOOKUP_TIMEOUT must be at least GEOCODE_TIMEOUT")
	}

	if c.DetailConcurrency < 0 {
		return fmt.Errorf("DETAIL_CONCURRENCY must not be negative")
	}

	if c.GeocodeConcurrency < 1 {
		return fmt.Errorf("GEOCODE_CONCURRENCY must be at least 1")
	}

	if c.TownTolerance <= 0 {
		return fmt.Errorf("TOWN_TOLERANCE_DEG must be positive")
	}

	if strings.TrimSpace(c.TownCity) == "" {
		return fmt.Errorf("TOWN_CITY is required")
	}

	if _, err := c.ParsedViewbox(); err != nil {
		return err
	}

	if c.SegmentCacheSize <= 0 {
		return fmt.Errorf("SEGMENT_CACHE_SIZE must be positive")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// ParsedViewbox parses GEOCODE_VIEWBOX as "lon1,lat1,lon2,lat2".
func (c *Config) ParsedViewbox() (domain.Viewbox, error) {
	parts := strings.Split(c.Viewbox, ",")
	if len(parts) != 4 {
		return domain.Viewbox{}, fmt.Errorf("GEOCODE_VIEWBOX must have 4 comma-separated numbers")
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.Viewbox{}, fmt.Errorf("GEOCODE_VIEWBOX value %q: %w", p, err)
		}
		vals[i] = v
	}

	vb := domain.Viewbox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}
	if vb.MinLon >= vb.MaxLon || vb.MinLat >= vb.MaxLat {
		return domain.Viewbox{}, fmt.Errorf("GEOCODE_VIEWBOX is inverted or empty")
	}
	return vb, nil
}

// TownCenter returns the configured town center, also used as the sentinel
// location for stops that failed geocoding.
func (c *Config) TownCenter() domain.Coordinates {
	return domain.Coordinates{Lat: c.TownCenterLat, Lon: c.TownCenterLon}
}

// String returns a representation of the config without credentials.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port=%s, LogLevel=%s, MaxStops=%d, MaxVehicles=%d, Nominatim=%s, OSRM=%s, VROOM=%s, "+
			"Town=%s, Overrides=%s, Postgres=%v, Redis=%v}",
		c.Port,
		c.LogLevel,
		c.MaxStops,
		c.MaxVehicles,
		c.NominatimURL,
		c.OSRMURL,
		c.VROOMURL,
		c.TownCity,
		c.OverridesFile,
		c.DatabaseURL != "",
		c.RedisURL != "",
	)
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}
