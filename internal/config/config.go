// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

// Config holds the application configuration.
type Config struct {
	NightscoutURL       string
	NightscoutToken     string
	NightscoutAPISecret string
	ImportDir           string
	QualityProfilePath  string
	LogFile             string
	LogLevel            string
	Timezone            timerange.TimezoneConfig
	Target              models.TargetRange
	Profile             QualityProfile
	RefreshInterval     time.Duration
	RequestTimeout      time.Duration
}

// Default values
const (
	defaultRefreshInterval = 5 * time.Minute
	defaultRequestTimeout  = 30 * time.Second
	defaultTargetLow       = 70.0
	defaultTargetHigh      = 180.0
)

// ErrMissingURL is returned when NIGHTSCOUT_URL is not set.
var ErrMissingURL = errors.New("NIGHTSCOUT_URL is required")

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		NightscoutURL:       getEnvString("NIGHTSCOUT_URL", ""),
		NightscoutToken:     getEnvString("NIGHTSCOUT_TOKEN", ""),
		NightscoutAPISecret: getEnvString("NIGHTSCOUT_API_SECRET", ""),
		ImportDir:           getEnvString("IMPORT_DIR", getDefaultImportDir()),
		QualityProfilePath:  getEnvString("QUALITY_PROFILE", ""),
		LogFile:             getEnvString("LOG_FILE", ""),
		LogLevel:            getEnvString("LOG_LEVEL", "info"),
		RefreshInterval:     getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		RequestTimeout:      getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		Target: models.TargetRange{
			Low:  getEnvFloat("TARGET_LOW", defaultTargetLow),
			High: getEnvFloat("TARGET_HIGH", defaultTargetHigh),
		},
		Profile: DefaultQualityProfile(),
	}

	if cfg.NightscoutURL == "" {
		return nil, ErrMissingURL
	}

	tz, err := parseTimezone(getEnvString("TIMEZONE", timerange.HostZoneName), os.Getenv("TIMEZONE_OFFSET_MINUTES"))
	if err != nil {
		return nil, err
	}
	cfg.Timezone = tz

	if cfg.Target.Low <= 0 || cfg.Target.High <= cfg.Target.Low {
		return nil, fmt.Errorf("invalid target range %.0f-%.0f", cfg.Target.Low, cfg.Target.High)
	}

	if cfg.QualityProfilePath != "" {
		profile, err := LoadQualityProfile(cfg.QualityProfilePath)
		if err != nil {
			return nil, err
		}
		cfg.Profile = profile
	}

	if err := ensureDir(cfg.ImportDir); err != nil {
		return nil, fmt.Errorf("failed to create import directory: %w", err)
	}
	if cfg.LogFile != "" {
		if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return cfg, nil
}

// parseTimezone validates the zone name and optional offset override up front
// so that a bad value fails at startup rather than on the first load.
func parseTimezone(name, offset string) (timerange.TimezoneConfig, error) {
	var tz timerange.TimezoneConfig
	if name == "" || name == timerange.HostZoneName {
		tz = timerange.HostZone()
	} else {
		tz = timerange.Zone(name)
	}

	if offset != "" {
		minutes, err := strconv.Atoi(offset)
		if err != nil {
			return tz, fmt.Errorf("TIMEZONE_OFFSET_MINUTES %q: %w", offset, err)
		}
		if !timerange.ValidOffset(minutes) {
			return tz, fmt.Errorf("TIMEZONE_OFFSET_MINUTES %d: %w", minutes, timerange.ErrOffsetOutOfRange)
		}
		tz = tz.WithOffset(minutes)
	}

	if _, err := tz.Location(); err != nil {
		return tz, err
	}
	return tz, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "glucodash", ".env"),
			filepath.Join(home, ".glucodash", ".env"),
		)
	}

	return paths
}

// ConfigDir returns the glucodash configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".glucodash"
	}
	return filepath.Join(home, ".config", "glucodash")
}

// getDefaultImportDir returns the default directory watched for exported databases.
func getDefaultImportDir() string {
	return filepath.Join(ConfigDir(), "imports")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
