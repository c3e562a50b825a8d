package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/glucodash/internal/db"
	"github.com/j-veylop/glucodash/internal/services/quality"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

// QualityProfile tunes the analyzer and inspector for one deployment.
type QualityProfile struct {
	GapThreshold          time.Duration `yaml:"gapThreshold"`
	PlausibleMin          float64       `yaml:"plausibleMin"`
	PlausibleMax          float64       `yaml:"plausibleMax"`
	BaselineSamplesPerDay int           `yaml:"baselineSamplesPerDay"`
	ScanGapMinutes        float64       `yaml:"scanGapMinutes"`
}

// DefaultQualityProfile returns the reference thresholds.
func DefaultQualityProfile() QualityProfile {
	q := quality.DefaultConfig()
	return QualityProfile{
		GapThreshold:          q.GapThreshold,
		PlausibleMin:          q.PlausibleMin,
		PlausibleMax:          q.PlausibleMax,
		BaselineSamplesPerDay: timerange.DefaultSamplesPerDay,
		ScanGapMinutes:        db.DefaultMinGapMinutes,
	}
}

// LoadQualityProfile reads a YAML profile. Missing keys keep their defaults.
func LoadQualityProfile(path string) (QualityProfile, error) {
	profile := DefaultQualityProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read quality profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse quality profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return profile, fmt.Errorf("quality profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate checks the profile for unusable values.
func (p QualityProfile) Validate() error {
	if p.GapThreshold <= 0 {
		return fmt.Errorf("gapThreshold must be positive, got %s", p.GapThreshold)
	}
	if p.PlausibleMax <= p.PlausibleMin {
		return fmt.Errorf("plausibleMax (%.0f) must exceed plausibleMin (%.0f)", p.PlausibleMax, p.PlausibleMin)
	}
	if p.BaselineSamplesPerDay <= 0 {
		return fmt.Errorf("baselineSamplesPerDay must be positive, got %d", p.BaselineSamplesPerDay)
	}
	if p.ScanGapMinutes < 0 {
		return fmt.Errorf("scanGapMinutes must not be negative, got %.0f", p.ScanGapMinutes)
	}
	return nil
}

// QualityConfig returns the analyzer thresholds of the profile.
func (p QualityProfile) QualityConfig() quality.Config {
	return quality.Config{
		GapThreshold: p.GapThreshold,
		PlausibleMin: p.PlausibleMin,
		PlausibleMax: p.PlausibleMax,
	}
}
