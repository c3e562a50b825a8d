package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/glucodash/internal/services/timerange"
)

var configKeys = []string{
	"NIGHTSCOUT_URL", "NIGHTSCOUT_TOKEN", "NIGHTSCOUT_API_SECRET",
	"TIMEZONE", "TIMEZONE_OFFSET_MINUTES", "REFRESH_INTERVAL", "REQUEST_TIMEOUT",
	"IMPORT_DIR", "TARGET_LOW", "TARGET_HIGH", "QUALITY_PROFILE", "LOG_FILE", "LOG_LEVEL",
}

// clearEnv unsets every configuration key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	t.Setenv(key, val)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_ENV_FLOAT"

	tests := []struct {
		name   string
		envVal string
		want   float64
	}{
		{"Integer", "65", 65},
		{"Decimal", "3.9", 3.9},
		{"Invalid", "low", 70},
		{"Empty", "", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvFloat(key, 70); got != tt.want {
				t.Errorf("getEnvFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultImportDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	want := filepath.Join(home, ".config", "glucodash", "imports")
	if got := getDefaultImportDir(); got != want {
		t.Errorf("getDefaultImportDir() = %q, want %q", got, want)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Fatal("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("getEnvPaths()[0] = %q, want the current directory .env", paths[0])
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	importDir := filepath.Join(t.TempDir(), "imports")
	t.Setenv("NIGHTSCOUT_URL", "https://ns.example.com")
	t.Setenv("IMPORT_DIR", importDir)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}

	if cfg.NightscoutURL != "https://ns.example.com" {
		t.Errorf("NightscoutURL = %q", cfg.NightscoutURL)
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.Target.Low != 70 || cfg.Target.High != 180 {
		t.Errorf("Target = %+v, want 70-180", cfg.Target)
	}
	if !cfg.Timezone.UseHostZone || cfg.Timezone.OffsetOverrideMinutes != nil {
		t.Errorf("Timezone = %+v, want host zone without override", cfg.Timezone)
	}
	if cfg.Profile != DefaultQualityProfile() {
		t.Errorf("Profile = %+v, want defaults", cfg.Profile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if _, err := os.Stat(importDir); err != nil {
		t.Errorf("import directory not created: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NIGHTSCOUT_URL", "https://ns.example.com")
	t.Setenv("NIGHTSCOUT_TOKEN", "reader-abc")
	t.Setenv("IMPORT_DIR", t.TempDir())
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("TIMEZONE_OFFSET_MINUTES", "-240")
	t.Setenv("REFRESH_INTERVAL", "90s")
	t.Setenv("TARGET_LOW", "80")
	t.Setenv("TARGET_HIGH", "160")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}

	if cfg.NightscoutToken != "reader-abc" {
		t.Errorf("NightscoutToken = %q", cfg.NightscoutToken)
	}
	if cfg.Timezone.UseHostZone || cfg.Timezone.ZoneName != "America/New_York" {
		t.Errorf("Timezone = %+v", cfg.Timezone)
	}
	if cfg.Timezone.OffsetOverrideMinutes == nil || *cfg.Timezone.OffsetOverrideMinutes != -240 {
		t.Errorf("OffsetOverrideMinutes = %v, want -240", cfg.Timezone.OffsetOverrideMinutes)
	}
	if cfg.RefreshInterval != 90*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.Target.Low != 80 || cfg.Target.High != 160 {
		t.Errorf("Target = %+v", cfg.Target)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "MissingURL",
			env:     map[string]string{},
			wantErr: ErrMissingURL,
		},
		{
			name:    "UnknownZone",
			env:     map[string]string{"NIGHTSCOUT_URL": "http://ns", "TIMEZONE": "Mars/Olympus"},
			wantErr: timerange.ErrInvalidTimezone,
		},
		{
			name:    "OffsetOutOfRange",
			env:     map[string]string{"NIGHTSCOUT_URL": "http://ns", "TIMEZONE_OFFSET_MINUTES": "900"},
			wantErr: timerange.ErrOffsetOutOfRange,
		},
		{
			name: "OffsetNotANumber",
			env:  map[string]string{"NIGHTSCOUT_URL": "http://ns", "TIMEZONE_OFFSET_MINUTES": "+1h"},
		},
		{
			name: "InvertedTarget",
			env:  map[string]string{"NIGHTSCOUT_URL": "http://ns", "TARGET_LOW": "200", "TARGET_HIGH": "100"},
		},
		{
			name: "MissingProfile",
			env:  map[string]string{"NIGHTSCOUT_URL": "http://ns", "QUALITY_PROFILE": "/nonexistent/profile.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("IMPORT_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			if err == nil {
				t.Fatal("FromEnv() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("FromEnv() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	content := "NIGHTSCOUT_URL=https://from-env-file.example.com\n" +
		"IMPORT_DIR=" + filepath.Join(tmpDir, "imports") + "\n" +
		"TARGET_HIGH=200\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Chdir(tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.NightscoutURL != "https://from-env-file.example.com" {
		t.Errorf("NightscoutURL = %q", cfg.NightscoutURL)
	}
	if cfg.Target.High != 200 {
		t.Errorf("Target.High = %v, want 200", cfg.Target.High)
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	content := "NIGHTSCOUT_URL=https://file.example.com\nIMPORT_DIR=" + tmpDir + "\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Chdir(tmpDir)
	t.Setenv("NIGHTSCOUT_URL", "https://env.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.NightscoutURL != "https://env.example.com" {
		t.Errorf("NightscoutURL = %q, want the environment value", cfg.NightscoutURL)
	}
}
