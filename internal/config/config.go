package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Vector  VectorConfig  `mapstructure:"vector"`
	Server  ServerConfig  `mapstructure:"server"`
	Tenants TenantsConfig `mapstructure:"tenants"`
	Trace   TraceConfig   `mapstructure:"trace"`
	Log     LogConfig     `mapstructure:"log"`
}

type LLMConfig struct {
	Provider   string `mapstructure:"provider"` // "openai", "gemini", "none"
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	EmbedModel string `mapstructure:"embed_model"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend"` // "memory" (default) or "redis"
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// VectorConfig points at an optional Qdrant index. An empty host means
// in-process similarity scoring only.
type VectorConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// TenantsConfig points at the YAML tenants file. Empty means no tenant store;
// every query resolves to the default FAQ set.
type TenantsConfig struct {
	File string `mapstructure:"file"`
}

type TraceConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.LLM.Provider != "" && c.LLM.Provider != "none" && c.LLM.APIKey == "" {
		warnings = append(warnings, fmt.Sprintf("LLM provider '%s' is configured but api_key is empty; running in degraded mode", c.LLM.Provider))
	}

	if c.Cache.TTL < 0 {
		warnings = append(warnings, fmt.Sprintf("cache ttl %v is negative; default will be used", c.Cache.TTL))
	}

	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		warnings = append(warnings, "cache backend is 'redis' but redis_addr is empty")
	}

	if c.Vector.Host != "" && c.Vector.Collection == "" {
		warnings = append(warnings, "vector host is set but collection is empty")
	}

	return warnings
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.provider", "none")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 30*time.Minute)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("trace.sample_rate", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}
