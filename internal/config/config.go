// Package config loads agent configuration with priority:
// defaults -> YAML file -> ESPALIER_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/schema"
)

// Config holds every recognized option for the agent and its tools.
type Config struct {
	Provider       string        `mapstructure:"provider"`
	DeploymentName string        `mapstructure:"deployment_name"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	AllowList      []string      `mapstructure:"allow_list"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SearchKey      string        `mapstructure:"search_key"`
	SearchEndpoint string        `mapstructure:"search_endpoint"`
	CacheBackend   string        `mapstructure:"cache_backend"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	RedisAddress   string        `mapstructure:"redis_address"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	LogLevel       string        `mapstructure:"log_level"`
}

// fileConfig is the YAML shape: durations are written as strings ("30s").
type fileConfig struct {
	Provider       *string   `yaml:"provider"`
	DeploymentName *string   `yaml:"deployment_name"`
	Temperature    *float64  `yaml:"temperature"`
	MaxTokens      *int      `yaml:"max_tokens"`
	AllowList      *[]string `yaml:"allow_list"`
	APIKey         *string   `yaml:"api_key"`
	BaseURL        *string   `yaml:"base_url"`
	RequestTimeout *string   `yaml:"request_timeout"`
	SearchKey      *string   `yaml:"search_key"`
	SearchEndpoint *string   `yaml:"search_endpoint"`
	CacheBackend   *string   `yaml:"cache_backend"`
	CacheTTL       *string   `yaml:"cache_ttl"`
	RedisAddress   *string   `yaml:"redis_address"`
	RedisPassword  *string   `yaml:"redis_password"`
	RedisDB        *int      `yaml:"redis_db"`
	LogLevel       *string   `yaml:"log_level"`
}

// Options declares the recognized option names and their types. FromMap
// validates raw maps against it before decoding.
var Options = schema.Schema{
	"provider":        schema.String(),
	"deployment_name": schema.Required(schema.String()),
	"temperature":     schema.Float(),
	"max_tokens":      schema.Int(),
	"allow_list":      schema.Slice(schema.String()),
	"api_key":         schema.Required(schema.String()),
	"base_url":        schema.String(),
	"request_timeout": schema.String(),
	"search_key":      schema.String(),
	"search_endpoint": schema.String(),
	"cache_backend":   schema.String(),
	"cache_ttl":       schema.String(),
	"redis_address":   schema.String(),
	"redis_password":  schema.String(),
	"redis_db":        schema.Int(),
	"log_level":       schema.String(),
}

// Default returns the configuration before any file or env input.
func Default() *Config {
	return &Config{
		Provider:       "openai",
		DeploymentName: "gpt-4o-mini",
		Temperature:    0,
		MaxTokens:      1000,
		RequestTimeout: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
		RedisAddress:   "localhost:6379",
		LogLevel:       "info",
	}
}

// Load reads path (when non-empty), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// FromMap validates a raw option map against Options and decodes it on top
// of the defaults. Unknown keys fail loudly.
func FromMap(data map[string]any) (*Config, error) {
	if err := schema.Validate(Options, data); err != nil {
		return nil, err
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     cfg,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Provider != nil {
		cfg.Provider = *fc.Provider
	}
	if fc.DeploymentName != nil {
		cfg.DeploymentName = *fc.DeploymentName
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.MaxTokens != nil {
		cfg.MaxTokens = *fc.MaxTokens
	}
	if fc.AllowList != nil {
		cfg.AllowList = *fc.AllowList
	}
	if fc.APIKey != nil {
		cfg.APIKey = *fc.APIKey
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.RequestTimeout != nil {
		d, err := time.ParseDuration(*fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if fc.SearchKey != nil {
		cfg.SearchKey = *fc.SearchKey
	}
	if fc.SearchEndpoint != nil {
		cfg.SearchEndpoint = *fc.SearchEndpoint
	}
	if fc.CacheBackend != nil {
		cfg.CacheBackend = *fc.CacheBackend
	}
	if fc.CacheTTL != nil {
		d, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if fc.RedisAddress != nil {
		cfg.RedisAddress = *fc.RedisAddress
	}
	if fc.RedisPassword != nil {
		cfg.RedisPassword = *fc.RedisPassword
	}
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ESPALIER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("ESPALIER_DEPLOYMENT_NAME"); v != "" {
		cfg.DeploymentName = v
	}
	if v := os.Getenv("ESPALIER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("ESPALIER_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("ESPALIER_ALLOW_LIST"); v != "" {
		cfg.AllowList = splitList(v)
	}
	if v := os.Getenv("ESPALIER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ESPALIER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ESPALIER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ESPALIER_SEARCH_KEY"); v != "" {
		cfg.SearchKey = v
	}
	if v := os.Getenv("ESPALIER_SEARCH_ENDPOINT"); v != "" {
		cfg.SearchEndpoint = v
	}
	if v := os.Getenv("ESPALIER_CACHE_BACKEND"); v != "" {
		cfg.CacheBackend = v
	}
	if v := os.Getenv("ESPALIER_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("ESPALIER_REDIS_ADDRESS"); v != "" {
		cfg.RedisAddress = v
	}
	if v := os.Getenv("ESPALIER_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ESPALIER_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("ESPALIER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
