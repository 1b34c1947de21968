package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Platform PlatformConfig
	OpenAI   OpenAIConfig
	Search   SearchConfig
	Cache    CacheConfig
	Prompts  PromptsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds the product-index connection settings
type CatalogConfig struct {
	URL            string `mapstructure:"url"`
	Collection     string `mapstructure:"collection"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// PlatformConfig holds the merchandise-platform API settings
type PlatformConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// OpenAIConfig holds the completion backend settings. Different models serve
// different tasks: the chat model answers normal turns, the compare and
// recommendation models handle the complex prompts.
type OpenAIConfig struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	ModelChat           string `mapstructure:"model_chat"`
	ModelCompare        string `mapstructure:"model_compare"`
	ModelRecommendation string `mapstructure:"model_recommendation"`
}

// SearchConfig holds the search tuning knobs
type SearchConfig struct {
	MaxResults          int     `mapstructure:"max_results"`
	MinScore            float64 `mapstructure:"min_score"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// PromptsConfig holds the prompt store settings
type PromptsConfig struct {
	File string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Pick up a local .env first so its values are visible to viper
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/solarchat/")

	// Environment variable settings
	v.SetEnvPrefix("SOLARCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "1125")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults
	v.SetDefault("catalog.url", "http://87.106.191.206:6333")
	v.SetDefault("catalog.collection", "solar_produkte_large")
	v.SetDefault("catalog.embedding_model", "text-embedding-3-large")

	// Platform defaults
	v.SetDefault("platform.url", "http://87.106.191.206:5555")
	v.SetDefault("platform.api_key", "")

	// OpenAI defaults
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_chat", "gpt-4o")
	v.SetDefault("openai.model_compare", "gpt-5.1")
	v.SetDefault("openai.model_recommendation", "gpt-5.1")

	// Search defaults
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.min_score", 0.3)
	v.SetDefault("search.similarity_threshold", 0.7)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Prompt store defaults
	v.SetDefault("prompts.file", "prompts/prompts.json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set SOLARCHAT_OPENAI_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisAddr == "" {
		return fmt.Errorf("Redis address is required when cache type is 'redis'")
	}

	if config.Search.MaxResults <= 0 {
		return fmt.Errorf("search max_results must be positive, got: %d", config.Search.MaxResults)
	}

	if config.Search.SimilarityThreshold <= 0 || config.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search similarity_threshold must be in (0, 1], got: %v", config.Search.SimilarityThreshold)
	}

	return nil
}

// loadEnvFile reads a .env file in the working directory into the process
// environment. Missing file is fine; existing variables are never
// overridden, so real environment wins over the file.
func loadEnvFile() error {
	data, err := os.ReadFile(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}

	return nil
}
