package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Model         ModelConfig
	LocalData     LocalDataConfig
	Scoring       ScoringConfig
	Store         StoreConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds Open Food Facts API configuration
type OpenFoodFactsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ModelConfig holds the scoring model artifact configuration
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// LocalDataConfig holds the local fallback dataset configuration. An empty
// path disables the fallback.
type LocalDataConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig holds scoring pipeline tunables
type ScoringConfig struct {
	RecommendationThreshold float64 `mapstructure:"recommendation_threshold"`
	RecommendationCount     int     `mapstructure:"recommendation_count"`
	RecommendationMargin    float64 `mapstructure:"recommendation_margin"`
}

// StoreConfig holds the consumer state store configuration
type StoreConfig struct {
	Type         string `mapstructure:"type"` // only "memory" for now
	HistoryLimit int    `mapstructure:"history_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/yumi/")

	v.SetEnvPrefix("YUMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "Yumi/1.0 (github.com/yumi/backend)")
	v.SetDefault("openfoodfacts.timeout", "10s")

	// Model defaults
	v.SetDefault("model.path", "data/model_artifacts.json")

	// Local dataset defaults
	v.SetDefault("localdata.path", "data/products.csv")

	// Scoring defaults
	v.SetDefault("scoring.recommendation_threshold", 50.0)
	v.SetDefault("scoring.recommendation_count", 3)
	v.SetDefault("scoring.recommendation_margin", 5.0)

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.history_limit", 50)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Model.Path == "" {
		return fmt.Errorf("model artifact path is required (set YUMI_MODEL_PATH)")
	}

	if config.Store.Type != "memory" {
		return fmt.Errorf("store type must be 'memory', got: %s", config.Store.Type)
	}

	if config.Scoring.RecommendationThreshold < 0 || config.Scoring.RecommendationThreshold > 100 {
		return fmt.Errorf("recommendation threshold must be within [0, 100], got: %.1f", config.Scoring.RecommendationThreshold)
	}

	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("Open Food Facts base URL is required")
	}

	return nil
}
