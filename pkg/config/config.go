package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Astronomy provider names
const (
	ProviderIPGeolocation = "ipgeolocation"
	ProviderSunCalc       = "suncalc"
	ProviderSunrise       = "sunrise"
)

// Display sink names
const (
	SinkMQTT      = "mqtt"
	SinkBacklight = "backlight"
)

// Config holds the configuration for the daylight agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTClientID string `yaml:"mqtt_client_id"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Postgres configuration (brightness history)
	EnableHistory              bool          `yaml:"enable_history"`
	PostgresHost               string        `yaml:"postgres_host"`
	PostgresPort               int           `yaml:"postgres_port"`
	PostgresUser               string        `yaml:"postgres_user"`
	PostgresPassword           string        `yaml:"postgres_password"`
	PostgresDB                 string        `yaml:"postgres_db"`
	PostgresSSLMode            string        `yaml:"postgres_sslmode"`
	PostgresMaxConnections     int           `yaml:"postgres_max_connections"`
	PostgresMaxIdleConnections int           `yaml:"postgres_max_idle_connections"`
	PostgresConnMaxLifetime    time.Duration `yaml:"postgres_conn_max_lifetime"`

	// Service configuration
	ServiceName string `yaml:"service_name"`
	HealthPort  int    `yaml:"health_port"`
	LogLevel    string `yaml:"log_level"`

	// Location
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`

	// Astronomy data
	AstronomyProvider string `yaml:"astronomy_provider"`
	AstronomyAPIKey   string `yaml:"astronomy_api_key"`
	AstronomyURL      string `yaml:"astronomy_url"`

	// Brightness curve
	MinBrightness int  `yaml:"min_brightness"`
	MaxBrightness int  `yaml:"max_brightness"`
	LastRay       bool `yaml:"last_ray"`

	// Scheduling
	AdjustIntervalSec     int `yaml:"adjust_interval_sec"`
	DateCheckIntervalSec  int `yaml:"date_check_interval_sec"`
	ManualOverrideMinutes int `yaml:"manual_override_minutes"`

	// Display
	DisplaySink   string `yaml:"display_sink"`
	DisplayDevice string `yaml:"display_device"`
	BacklightPath string `yaml:"backlight_path"`
	FadeStepMs    int    `yaml:"fade_step_ms"`

	// SettingsFile is the YAML file read by LoadFromFile
	SettingsFile string `yaml:"-"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker: "localhost",
		MQTTPort:   1883,

		RedisHost: "localhost",
		RedisPort: 6379,
		RedisDB:   0,

		EnableHistory:              false,
		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "daylight",
		PostgresDB:                 "daylight",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     5,
		PostgresMaxIdleConnections: 2,
		PostgresConnMaxLifetime:    30 * time.Minute,

		ServiceName: "daylight-agent",
		HealthPort:  8080,
		LogLevel:    "info",

		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,
		Timezone:  "Local",

		AstronomyProvider: ProviderSunCalc,
		AstronomyURL:      "https://api.ipgeolocation.io/astronomy",

		MinBrightness: 0,
		MaxBrightness: 100,

		AdjustIntervalSec:    90,
		DateCheckIntervalSec: 3600,

		ManualOverrideMinutes: 60,

		DisplaySink:   SinkMQTT,
		DisplayDevice: "desktop",
		BacklightPath: "/sys/class/backlight/intel_backlight",
		FadeStepMs:    50,
	}
}

// LoadFromFile overlays values from a YAML settings file. Keys missing from
// the file keep their current value. An empty path is a no-op.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	c.SettingsFile = path
	return nil
}

// LoadFromEnv loads configuration from environment variables with DAYLIGHT_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	envString("DAYLIGHT_MQTT_BROKER", &c.MQTTBroker)
	envInt("DAYLIGHT_MQTT_PORT", &c.MQTTPort)
	envString("DAYLIGHT_MQTT_USER", &c.MQTTUser)
	envString("DAYLIGHT_MQTT_PASSWORD", &c.MQTTPassword)
	envString("DAYLIGHT_MQTT_CLIENT_ID", &c.MQTTClientID)

	// Redis configuration
	envString("DAYLIGHT_REDIS_HOST", &c.RedisHost)
	envInt("DAYLIGHT_REDIS_PORT", &c.RedisPort)
	envString("DAYLIGHT_REDIS_PASSWORD", &c.RedisPassword)
	envInt("DAYLIGHT_REDIS_DB", &c.RedisDB)

	// Postgres configuration
	envBool("DAYLIGHT_ENABLE_HISTORY", &c.EnableHistory)
	envString("DAYLIGHT_POSTGRES_HOST", &c.PostgresHost)
	envInt("DAYLIGHT_POSTGRES_PORT", &c.PostgresPort)
	envString("DAYLIGHT_POSTGRES_USER", &c.PostgresUser)
	envString("DAYLIGHT_POSTGRES_PASSWORD", &c.PostgresPassword)
	envString("DAYLIGHT_POSTGRES_DB", &c.PostgresDB)
	envString("DAYLIGHT_POSTGRES_SSLMODE", &c.PostgresSSLMode)

	// Service configuration
	envString("DAYLIGHT_SERVICE_NAME", &c.ServiceName)
	envInt("DAYLIGHT_HEALTH_PORT", &c.HealthPort)
	envString("DAYLIGHT_LOG_LEVEL", &c.LogLevel)

	// Location
	envFloat("DAYLIGHT_LATITUDE", &c.Latitude)
	envFloat("DAYLIGHT_LONGITUDE", &c.Longitude)
	envString("DAYLIGHT_TIMEZONE", &c.Timezone)

	// Astronomy
	envString("DAYLIGHT_ASTRONOMY_PROVIDER", &c.AstronomyProvider)
	envString("DAYLIGHT_ASTRONOMY_API_KEY", &c.AstronomyAPIKey)
	envString("DAYLIGHT_ASTRONOMY_URL", &c.AstronomyURL)

	// Brightness curve
	envInt("DAYLIGHT_MIN_BRIGHTNESS", &c.MinBrightness)
	envInt("DAYLIGHT_MAX_BRIGHTNESS", &c.MaxBrightness)
	envBool("DAYLIGHT_LAST_RAY", &c.LastRay)

	// Scheduling
	envInt("DAYLIGHT_ADJUST_INTERVAL_SEC", &c.AdjustIntervalSec)
	envInt("DAYLIGHT_DATE_CHECK_INTERVAL_SEC", &c.DateCheckIntervalSec)
	envInt("DAYLIGHT_MANUAL_OVERRIDE_MINUTES", &c.ManualOverrideMinutes)

	// Display
	envString("DAYLIGHT_DISPLAY_SINK", &c.DisplaySink)
	envString("DAYLIGHT_DISPLAY_DEVICE", &c.DisplayDevice)
	envString("DAYLIGHT_BACKLIGHT_PATH", &c.BacklightPath)
	envInt("DAYLIGHT_FADE_STEP_MS", &c.FadeStepMs)
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	c.RegisterFlags(pflag.CommandLine)
	pflag.Parse()
}

// RegisterFlags binds every option to fs, using the current values as defaults
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	// MQTT flags
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	fs.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Postgres flags
	fs.BoolVar(&c.EnableHistory, "enable-history", c.EnableHistory, "Record applied brightness in Postgres")
	fs.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	fs.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	fs.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres user")
	fs.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	fs.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database")

	// Service flags
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Location flags
	fs.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude for sun times")
	fs.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude for sun times")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone of the display (Local for system time)")

	// Astronomy flags
	fs.StringVar(&c.AstronomyProvider, "astronomy-provider", c.AstronomyProvider, "Sun times source (ipgeolocation, suncalc, sunrise)")
	fs.StringVar(&c.AstronomyAPIKey, "astronomy-api-key", c.AstronomyAPIKey, "ipgeolocation.io API key")
	fs.StringVar(&c.AstronomyURL, "astronomy-url", c.AstronomyURL, "ipgeolocation.io astronomy endpoint")

	// Brightness flags
	fs.IntVar(&c.MinBrightness, "min-brightness", c.MinBrightness, "Brightness at sunrise and sunset (percent)")
	fs.IntVar(&c.MaxBrightness, "max-brightness", c.MaxBrightness, "Brightness at solar noon (percent)")
	fs.BoolVar(&c.LastRay, "last-ray", c.LastRay, "Append one extra minimum-brightness span after sunset")

	// Scheduling flags
	fs.IntVar(&c.AdjustIntervalSec, "adjust-interval", c.AdjustIntervalSec, "Brightness adjustment interval in seconds")
	fs.IntVar(&c.DateCheckIntervalSec, "date-check-interval", c.DateCheckIntervalSec, "Interval in seconds between checks for a new day")
	fs.IntVar(&c.ManualOverrideMinutes, "manual-override-minutes", c.ManualOverrideMinutes, "Default length of a manual brightness override")

	// Display flags
	fs.StringVar(&c.DisplaySink, "display-sink", c.DisplaySink, "Where brightness goes (mqtt, backlight)")
	fs.StringVar(&c.DisplayDevice, "display-device", c.DisplayDevice, "Display name used in MQTT topics")
	fs.StringVar(&c.BacklightPath, "backlight-path", c.BacklightPath, "sysfs backlight directory")
	fs.IntVar(&c.FadeStepMs, "fade-step-ms", c.FadeStepMs, "Delay between one-percent fade steps (ms)")
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.EnableHistory && c.PostgresHost == "" {
		return fmt.Errorf("Postgres host is required when history is enabled")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.MinBrightness < 0 || c.MaxBrightness > 100 {
		return fmt.Errorf("brightness values must be between 0 and 100")
	}
	if c.MinBrightness >= c.MaxBrightness {
		return fmt.Errorf("min brightness must be less than max brightness")
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.AstronomyProvider {
	case ProviderIPGeolocation:
		if c.AstronomyAPIKey == "" {
			return fmt.Errorf("astronomy API key is required for the %s provider", ProviderIPGeolocation)
		}
	case ProviderSunCalc, ProviderSunrise:
	default:
		return fmt.Errorf("invalid astronomy provider: %s (must be ipgeolocation, suncalc, or sunrise)", c.AstronomyProvider)
	}

	switch c.DisplaySink {
	case SinkMQTT:
		if c.DisplayDevice == "" {
			return fmt.Errorf("display device is required for the %s sink", SinkMQTT)
		}
	case SinkBacklight:
		if c.BacklightPath == "" {
			return fmt.Errorf("backlight path is required for the %s sink", SinkBacklight)
		}
	default:
		return fmt.Errorf("invalid display sink: %s (must be mqtt or backlight)", c.DisplaySink)
	}

	if c.AdjustIntervalSec <= 0 {
		return fmt.Errorf("adjust interval must be positive")
	}
	if c.DateCheckIntervalSec <= 0 {
		return fmt.Errorf("date check interval must be positive")
	}
	if c.ManualOverrideMinutes <= 0 {
		return fmt.Errorf("manual override minutes must be positive")
	}
	if c.FadeStepMs < 0 {
		return fmt.Errorf("fade step must not be negative")
	}

	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns a lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}

// AdjustInterval returns the brightness adjustment interval
func (c *Config) AdjustInterval() time.Duration {
	return time.Duration(c.AdjustIntervalSec) * time.Second
}

// DateCheckInterval returns the interval between new-day checks
func (c *Config) DateCheckInterval() time.Duration {
	return time.Duration(c.DateCheckIntervalSec) * time.Second
}

// ManualOverride returns the default manual override duration
func (c *Config) ManualOverride() time.Duration {
	return time.Duration(c.ManualOverrideMinutes) * time.Minute
}

// FadeStep returns the delay between one-percent fade steps
func (c *Config) FadeStep() time.Duration {
	return time.Duration(c.FadeStepMs) * time.Millisecond
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
