// Package config loads process configuration from the environment and
// persists user settings in SQLite.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/parks"
	"github.com/ngmaloney/pota-planner/internal/tzlookup"
	"github.com/ngmaloney/pota-planner/internal/weather"
)

// Config lists the tunable parameters for the planner.
type Config struct {
	DatabasePath    string
	LogLevel        string
	WeatherURL      string
	ParksURL        string
	TZShapefileURL  string
	WeatherCacheTTL time.Duration
}

const defaultLogLevel = "info"

// Load derives configuration values from environment variables, falling back to defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabasePath:    database.DBPath(),
		LogLevel:        defaultLogLevel,
		WeatherURL:      weather.DefaultBaseURL,
		ParksURL:        parks.DefaultParksURL,
		TZShapefileURL:  tzlookup.DefaultShapefileURL,
		WeatherCacheTTL: weather.DefaultTTL,
	}

	if v := os.Getenv("POTA_PLANNER_DB"); v != "" {
		cfg.DatabasePath = v
	}

	if v := os.Getenv("POTA_PLANNER_LOG_LEVEL"); v != "" {
		if v != "info" && v != "debug" {
			return Config{}, fmt.Errorf("invalid POTA_PLANNER_LOG_LEVEL: %q", v)
		}
		cfg.LogLevel = v
	}

	if v := os.Getenv("POTA_PLANNER_WEATHER_URL"); v != "" {
		cfg.WeatherURL = v
	}

	if v := os.Getenv("POTA_PLANNER_PARKS_URL"); v != "" {
		cfg.ParksURL = v
	}

	if v := os.Getenv("POTA_PLANNER_TZ_SHAPEFILE_URL"); v != "" {
		cfg.TZShapefileURL = v
	}

	if v := os.Getenv("POTA_PLANNER_WEATHER_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid POTA_PLANNER_WEATHER_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("invalid POTA_PLANNER_WEATHER_TTL: must be positive")
		}
		cfg.WeatherCacheTTL = ttl
	}

	return cfg, nil
}

// Debug reports whether debug logging is on.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}
