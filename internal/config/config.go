// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// TelegramConfig holds Telegram bot configuration.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// SourcesConfig holds the external hazard data provider endpoints.
type SourcesConfig struct {
	SeismicURL     string `mapstructure:"seismic_url"`
	NowcastURL     string `mapstructure:"nowcast_url"`
	ForecastURL    string `mapstructure:"forecast_url"`
	WindyURL       string `mapstructure:"windy_url"`
	WindyKey       string `mapstructure:"windy_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// GeoConfig holds location resolution configuration.
type GeoConfig struct {
	GeocoderURL string `mapstructure:"geocoder_url"`
	UserAgent   string `mapstructure:"user_agent"`
	DatasetPath string `mapstructure:"dataset_path"`
}

// WeatherConfig holds weather monitoring configuration.
type WeatherConfig struct {
	DefaultMode string `mapstructure:"default_mode"` // bmkg, windy, or both
	// PrecipCorrectionDivisor compensates for overlapping rolling-accumulation
	// samples. With hourly polling of a 3-hour accumulation the divisor is 3;
	// change it together with the weather cadence.
	PrecipCorrectionDivisor float64  `mapstructure:"precip_correction_divisor"`
	DefaultKeywords         []string `mapstructure:"default_keywords"`
	DefaultLocations        []string `mapstructure:"default_locations"`
}

// SchedulerConfig holds the poll cadences, in seconds.
type SchedulerConfig struct {
	SeismicInterval int `mapstructure:"seismic_interval"`
	NowcastInterval int `mapstructure:"nowcast_interval"`
	WeatherInterval int `mapstructure:"weather_interval"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults. Secrets default to empty so the env override is visible
	// to Unmarshal even without a config file.
	v.SetDefault("telegram.token", "")
	v.SetDefault("sources.windy_key", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "./data/mhews.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("telegram.debug", false)

	v.SetDefault("sources.seismic_url", "https://data.bmkg.go.id/DataMKG/TEWS/autogempa.json")
	v.SetDefault("sources.nowcast_url", "https://www.bmkg.go.id/alerts/nowcast/id/rss.xml")
	v.SetDefault("sources.forecast_url", "https://api.bmkg.go.id/publik/prakiraan-cuaca")
	v.SetDefault("sources.windy_url", "https://api.windy.com/api/point-forecast/v2")
	v.SetDefault("sources.timeout_seconds", 20)

	v.SetDefault("geo.geocoder_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geo.user_agent", "MHEWS-Bot/3.0 (emergency-monitoring)")
	v.SetDefault("geo.dataset_path", "./data/wilayah.csv")

	v.SetDefault("weather.default_mode", "both")
	v.SetDefault("weather.precip_correction_divisor", 3.0)
	v.SetDefault("weather.default_keywords", []string{"Aceh", "Banda Aceh", "Lhokseumawe", "Meulaboh", "Sabang"})
	v.SetDefault("weather.default_locations", []string{"Banda Aceh", "Lhokseumawe", "Meulaboh", "Sigli", "Takengon"})

	v.SetDefault("scheduler.seismic_interval", 60)
	v.SetDefault("scheduler.nowcast_interval", 300)
	v.SetDefault("scheduler.weather_interval", 3600)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Read environment variables
	v.SetEnvPrefix("MHEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	switch c.Weather.DefaultMode {
	case "bmkg", "windy", "both":
	default:
		return fmt.Errorf("invalid weather mode %q: must be bmkg, windy, or both", c.Weather.DefaultMode)
	}
	if c.Weather.PrecipCorrectionDivisor <= 0 {
		return fmt.Errorf("precip correction divisor must be positive")
	}
	return nil
}

// ServerAddress returns the full server address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
