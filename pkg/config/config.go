// Package config loads pokedex settings from defaults, an optional YAML
// file, POKEDEX_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. POKEDEX_PAGE_SIZE.
const EnvPrefix = "POKEDEX"

// Defaults.
const (
	DefaultBaseURL          = "https://pokeapi.co/api/v2"
	DefaultUserAgent        = "pokedex-client/1.0.0"
	DefaultPageSize         = 24
	DefaultConcurrency      = 12
	DefaultRequestTimeout   = 30 * time.Second
	DefaultFetchTimeout     = 15 * time.Second
	DefaultResponseCacheTTL = 5 * time.Minute
	DefaultLogLevel         = "info"
	DefaultListenAddr       = ":8080"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL          string        `mapstructure:"base-url"`
	UserAgent        string        `mapstructure:"user-agent"`
	PageSize         int           `mapstructure:"page-size"`
	Concurrency      int           `mapstructure:"concurrency"`
	RequestTimeout   time.Duration `mapstructure:"request-timeout"`
	FetchTimeout     time.Duration `mapstructure:"fetch-timeout"`
	RedisAddr        string        `mapstructure:"redis-addr"`
	ResponseCacheTTL time.Duration `mapstructure:"response-cache-ttl"`
	LogLevel         string        `mapstructure:"log-level"`
	LogPretty        bool          `mapstructure:"log-pretty"`
	ListenAddr       string        `mapstructure:"listen-addr"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("base-url", DefaultBaseURL)
	v.SetDefault("user-agent", DefaultUserAgent)
	v.SetDefault("page-size", DefaultPageSize)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("request-timeout", DefaultRequestTimeout)
	v.SetDefault("fetch-timeout", DefaultFetchTimeout)
	v.SetDefault("redis-addr", "")
	v.SetDefault("response-cache-ttl", DefaultResponseCacheTTL)
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-pretty", false)
	v.SetDefault("listen-addr", DefaultListenAddr)
	return v
}

// Load resolves the configuration. An empty configPath reads nothing from
// disk; a configPath that does not exist is not an error. Flags that were
// set on the command line win over every other source.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := New()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing viper instance.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("base-url must be an absolute URL, got %q", c.BaseURL)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return errors.New("user-agent must not be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page-size must be positive, got %d", c.PageSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.RequestTimeout <= 0 || c.FetchTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.ResponseCacheTTL < 0 {
		return errors.New("response-cache-ttl must not be negative")
	}
	return nil
}

// CacheEnabled reports whether a Redis response cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
