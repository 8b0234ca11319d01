package config

import (
	"errors"
	"fmt"
	"os"

	"salonik/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BookingConfig tunes the availability engine's callers. The engine itself
// receives these as plain arguments.
type BookingConfig struct {
	GranularityMinutes  int `yaml:"granularity_minutes"`
	MaxBookingDays      int `yaml:"max_booking_days"`
	SlotCacheTTLSeconds int `yaml:"slot_cache_ttl_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env, если есть, подгружается до разворачивания переменных в YAML
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api keys are configured")
	}
	if c.Booking.GranularityMinutes < 0 || c.Booking.GranularityMinutes > 24*60 {
		return fmt.Errorf("invalid booking granularity: %d", c.Booking.GranularityMinutes)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = models.RateLimitRPS
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = models.RateLimitBurst
	}

	if c.Booking.GranularityMinutes == 0 {
		c.Booking.GranularityMinutes = models.DefaultGranularityMinutes
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.SlotCacheTTLSeconds == 0 {
		c.Booking.SlotCacheTTLSeconds = models.DefaultSlotCacheTTL
	}
}
