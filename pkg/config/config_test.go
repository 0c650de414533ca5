package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 90*time.Second, cfg.AdjustInterval())
	assert.Equal(t, time.Hour, cfg.DateCheckInterval())
	assert.Equal(t, time.Hour, cfg.ManualOverride())
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTAddress())
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DAYLIGHT_MIN_BRIGHTNESS", "15")
	t.Setenv("DAYLIGHT_MAX_BRIGHTNESS", "85")
	t.Setenv("DAYLIGHT_ASTRONOMY_PROVIDER", "ipgeolocation")
	t.Setenv("DAYLIGHT_ASTRONOMY_API_KEY", "secret")
	t.Setenv("DAYLIGHT_LATITUDE", "51.5")
	t.Setenv("DAYLIGHT_LAST_RAY", "true")
	t.Setenv("DAYLIGHT_REDIS_PORT", "not-a-number")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, 15, cfg.MinBrightness)
	assert.Equal(t, 85, cfg.MaxBrightness)
	assert.Equal(t, ProviderIPGeolocation, cfg.AstronomyProvider)
	assert.Equal(t, "secret", cfg.AstronomyAPIKey)
	assert.Equal(t, 51.5, cfg.Latitude)
	assert.True(t, cfg.LastRay)
	assert.Equal(t, 6379, cfg.RedisPort, "unparsable values keep the default")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daylight.yaml")
	settings := []byte(`
min_brightness: 10
max_brightness: 70
display_sink: backlight
backlight_path: /sys/class/backlight/acpi_video0
fade_step_ms: 20
postgres_conn_max_lifetime: 5m
`)
	require.NoError(t, os.WriteFile(path, settings, 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 10, cfg.MinBrightness)
	assert.Equal(t, 70, cfg.MaxBrightness)
	assert.Equal(t, SinkBacklight, cfg.DisplaySink)
	assert.Equal(t, "/sys/class/backlight/acpi_video0", cfg.BacklightPath)
	assert.Equal(t, 20*time.Millisecond, cfg.FadeStep())
	assert.Equal(t, 5*time.Minute, cfg.PostgresConnMaxLifetime)
	assert.Equal(t, path, cfg.SettingsFile)

	// untouched keys keep defaults
	assert.Equal(t, 90, cfg.AdjustIntervalSec)
}

func TestLoadFromFile_Errors(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_brightness: [1, 2"), 0o644))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestRegisterFlags(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--min-brightness=5", "--display-device=office", "--adjust-interval=30"}))

	assert.Equal(t, 5, cfg.MinBrightness)
	assert.Equal(t, "office", cfg.DisplayDevice)
	assert.Equal(t, 30*time.Second, cfg.AdjustInterval())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"equal brightness", func(c *Config) { c.MinBrightness, c.MaxBrightness = 40, 40 }, "min brightness must be less than max brightness"},
		{"max above 100", func(c *Config) { c.MaxBrightness = 120 }, "brightness values must be between 0 and 100"},
		{"negative min", func(c *Config) { c.MinBrightness = -1 }, "brightness values must be between 0 and 100"},
		{"missing api key", func(c *Config) { c.AstronomyProvider = ProviderIPGeolocation }, "astronomy API key is required"},
		{"unknown provider", func(c *Config) { c.AstronomyProvider = "almanac" }, "invalid astronomy provider"},
		{"unknown sink", func(c *Config) { c.DisplaySink = "hdmi" }, "invalid display sink"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"zero interval", func(c *Config) { c.AdjustIntervalSec = 0 }, "adjust interval must be positive"},
		{"zero override", func(c *Config) { c.ManualOverrideMinutes = 0 }, "manual override minutes must be positive"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus_Mons" }, "invalid timezone"},
		{"bad latitude", func(c *Config) { c.Latitude = 91 }, "latitude must be between -90 and 90"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := NewConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
