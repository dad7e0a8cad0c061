package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, ok := configValue.Load().(*Config)
	if !ok {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string            `mapstructure:"version"`
	Environment string            `mapstructure:"environment" validate:"required"`
	Server      ServerConfig      `mapstructure:"server"`
	Weather     WeatherConfig     `mapstructure:"weather"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Dashboard   DashboardConfig   `mapstructure:"dashboard"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

// WeatherConfig describes the OpenWeatherMap-compatible provider.
// RateLimit is requests per second; zero disables limiting.
type WeatherConfig struct {
	BaseURL   string  `mapstructure:"base_url" validate:"required,url"`
	APIKey    string  `mapstructure:"api_key"`
	Timeout   int     `mapstructure:"timeout" validate:"min=1"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"min=1"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite memory"`
	Path   string `mapstructure:"path" validate:"required_if=Driver sqlite"`
}

type GeolocationConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Provider  string  `mapstructure:"provider" validate:"oneof=static ip"`
	Latitude  float64 `mapstructure:"latitude" validate:"latitude"`
	Longitude float64 `mapstructure:"longitude" validate:"longitude"`
	LookupURL string  `mapstructure:"lookup_url" validate:"omitempty,url"`
	Timeout   int     `mapstructure:"timeout" validate:"min=1"`
}

type DashboardConfig struct {
	// Timezone used to derive calendar dates for the forecast, e.g. "Europe/Kyiv".
	// Empty means the host's local zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 0, // the SSE stream is long-lived
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.openweathermap.org/data/2.5",
			APIKey:    "",
			Timeout:   10,
			RateLimit: 1,
			RateBurst: 2,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "weather-dashboard.db",
		},
		Geolocation: GeolocationConfig{
			Enabled:   false,
			Provider:  "ip",
			LookupURL: "http://ip-api.com/json",
			Timeout:   5,
		},
		Dashboard: DashboardConfig{
			Timezone: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-dashboard",
		},
	}
}
