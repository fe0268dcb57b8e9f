package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBDriver       string `mapstructure:"DB_DRIVER"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	GinMode        string `mapstructure:"GIN_MODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	RateLimitStore string `mapstructure:"RATE_LIMIT_STORE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`
	SeedFile       string `mapstructure:"SEED_FILE"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSize    int    `mapstructure:"LOG_MAX_SIZE"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAge     int    `mapstructure:"LOG_MAX_AGE"`
	LogCompress   bool   `mapstructure:"LOG_COMPRESS"`
}

var AppConfig *Config

var defaults = map[string]any{
	"DATABASE_URL":     "file:gamer-boy.db?_pragma=foreign_keys(1)",
	"DB_DRIVER":        "sqlite",
	"HTTP_ADDR":        ":8080",
	"GIN_MODE":         "debug",
	"REDIS_URL":        "redis://localhost:6379/0",
	"RATE_LIMIT_STORE": "memory",
	"CORS_ORIGINS":     "*",
	"SEED_FILE":        "",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "console",
	"LOG_FILE":         "",
	"LOG_MAX_SIZE":     100,
	"LOG_MAX_BACKUPS":  3,
	"LOG_MAX_AGE":      28,
	"LOG_COMPRESS":     false,
}

// Load reads the configuration from a .env file and environment variables into v.
// A missing .env file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		slog.Debug(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = &cfg
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres|sqlite)", c.DBDriver)
	}

	c.RateLimitStore = strings.ToLower(strings.TrimSpace(c.RateLimitStore))
	switch c.RateLimitStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_STORE %q (want memory|redis)", c.RateLimitStore)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
