package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "NOGO"

type Config struct {
	// Game configuration
	Game GameConfig `mapstructure:"game"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// MCP tool server configuration
	MCP MCPConfig `mapstructure:"mcp"`
}

type GameConfig struct {
	MaxDimension         int  `mapstructure:"maxDimension"`
	ComputerFallbackScan bool `mapstructure:"computerFallbackScan"`
}

type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	// MetricsAddr enables the /metrics and /health endpoint when non-empty.
	MetricsAddr string `mapstructure:"metricsAddr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MCPConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// RateLimitConfig throttles MCP tool calls.
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstSize      int  `mapstructure:"burstSize"`
	// PerToolLimits overrides RequestsPerMin for individual tools.
	PerToolLimits map[string]int `mapstructure:"perToolLimits"`
}

// CacheConfig bounds the analysis cache behind the MCP tools.
type CacheConfig struct {
	Enabled      bool  `mapstructure:"enabled"`
	MaxItems     int   `mapstructure:"maxItems"`
	MaxSizeBytes int64 `mapstructure:"maxSizeBytes"`
	TTLSeconds   int   `mapstructure:"ttlSeconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.maxDimension", 1000)
	v.SetDefault("game.computerFallbackScan", true)

	v.SetDefault("server.name", "nogo")
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("server.metricsAddr", "")

	// Logs share the terminal with the board, so stay quiet by default.
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("mcp.rateLimit.enabled", false)
	v.SetDefault("mcp.rateLimit.requestsPerMin", 600)
	v.SetDefault("mcp.rateLimit.burstSize", 50)

	v.SetDefault("mcp.cache.enabled", true)
	v.SetDefault("mcp.cache.maxItems", 256)
	v.SetDefault("mcp.cache.maxSizeBytes", 64*1024*1024)
	v.SetDefault("mcp.cache.ttlSeconds", 0)
}

// Load reads defaults, then the optional config file, then NOGO_* environment
// variables (NOGO_LOGGING_LEVEL, NOGO_SERVER_METRICSADDR, ...).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Game.MaxDimension < 1 {
		c.Game.MaxDimension = 1
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
		c.Logging.Format = strings.ToLower(c.Logging.Format)
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	if c.MCP.RateLimit.Enabled {
		if c.MCP.RateLimit.RequestsPerMin < 1 {
			c.MCP.RateLimit.RequestsPerMin = 1
		}
		if c.MCP.RateLimit.BurstSize < 1 {
			c.MCP.RateLimit.BurstSize = 1
		}
		for tool, limit := range c.MCP.RateLimit.PerToolLimits {
			if limit < 1 {
				return fmt.Errorf("rate limit for tool %s must be positive, got %d", tool, limit)
			}
		}
	}

	if c.MCP.Cache.MaxItems < 0 || c.MCP.Cache.MaxSizeBytes < 0 || c.MCP.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache limits must not be negative")
	}

	if c.Logging.File != "" {
		dir := filepath.Dir(c.Logging.File)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("log directory %s does not exist", dir)
		}
	}

	return nil
}

// GetConfigPath finds a config file: NOGO_CONFIG, then ./nogo.yaml or
// ./nogo.json, then ~/.nogo/config.yaml. Empty means defaults only.
func GetConfigPath() string {
	if path := os.Getenv("NOGO_CONFIG"); path != "" {
		return path
	}

	for _, name := range []string{"nogo.yaml", "nogo.json"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(home, ".nogo", "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}
