package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultListen        = "localhost:8080"
	DefaultInterval      = 5 * time.Second
	DefaultHistoryPolicy = "always"
	DefaultCapacity      = 600
	DefaultTokenExpiry   = 90 * 24 * time.Hour
	DefaultRateLimit     = 100.0
	DefaultRateBurst     = 200
	DefaultStatusTTL     = time.Second

	EnvPrefix = "LATENCYVIZ"
)

// Config holds the application configuration
type Config struct {
	Listen     string           `mapstructure:"listen"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	History    HistoryConfig    `mapstructure:"history"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Security   SecurityConfig   `mapstructure:"security"`
	Status     StatusConfig     `mapstructure:"status"`
}

type SimulationConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	HistoryPolicy string        `mapstructure:"history_policy"`
	Seed          uint64        `mapstructure:"seed"` // 0 means time-seeded
	Autostart     bool          `mapstructure:"autostart"`
}

type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type DatasetConfig struct {
	Path string `mapstructure:"path"` // empty uses the embedded dataset
}

type AuthConfig struct {
	Secret      string        `mapstructure:"secret"`
	SecretFile  string        `mapstructure:"secret_file"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Required    bool          `mapstructure:"required"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedIPs     []string `mapstructure:"allowed_ips"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateBurst      int      `mapstructure:"rate_burst"`
}

type StatusConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("simulation.interval", DefaultInterval.String())
	v.SetDefault("simulation.history_policy", DefaultHistoryPolicy)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.autostart", true)
	v.SetDefault("history.capacity", DefaultCapacity)
	v.SetDefault("dataset.path", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.secret_file", "")
	v.SetDefault("auth.token_expiry", DefaultTokenExpiry.String())
	v.SetDefault("auth.required", true)
	v.SetDefault("security.allowed_origins", []string{})
	v.SetDefault("security.allowed_ips", []string{})
	v.SetDefault("security.rate_limit", DefaultRateLimit)
	v.SetDefault("security.rate_burst", DefaultRateBurst)
	v.SetDefault("status.cache_ttl", DefaultStatusTTL.String())
}

// Load reads configuration from path (optional) and LATENCYVIZ_* environment
// variables. Without a path, config.yaml is looked up in the working directory
// and /etc/latencyviz.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/latencyviz/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Printf("No config file found, using defaults and environment")
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values left by a partial config
func ApplyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Simulation.Interval <= 0 {
		cfg.Simulation.Interval = DefaultInterval
	}
	if cfg.Simulation.HistoryPolicy == "" {
		cfg.Simulation.HistoryPolicy = DefaultHistoryPolicy
	}
	if cfg.History.Capacity <= 0 {
		cfg.History.Capacity = DefaultCapacity
	}
	if cfg.Auth.TokenExpiry <= 0 {
		cfg.Auth.TokenExpiry = DefaultTokenExpiry
	}
	if cfg.Security.RateLimit <= 0 {
		cfg.Security.RateLimit = DefaultRateLimit
	}
	if cfg.Security.RateBurst <= 0 {
		cfg.Security.RateBurst = DefaultRateBurst
	}
	if cfg.Status.CacheTTL <= 0 {
		cfg.Status.CacheTTL = DefaultStatusTTL
	}
}

// Validate rejects values the server can't run with
func Validate(cfg Config) error {
	switch cfg.Simulation.HistoryPolicy {
	case "always", "historical":
	default:
		return fmt.Errorf("simulation.history_policy must be always or historical, got %q", cfg.Simulation.HistoryPolicy)
	}
	if cfg.Simulation.Interval < 10*time.Millisecond {
		return fmt.Errorf("simulation.interval too small: %v", cfg.Simulation.Interval)
	}
	if cfg.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be positive")
	}
	if !strings.Contains(cfg.Listen, ":") {
		return fmt.Errorf("listen must be host:port, got %q", cfg.Listen)
	}
	return nil
}
