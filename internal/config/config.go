package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/simaogato/portfolio-backend/internal/adapter/marketdata"
	"github.com/simaogato/portfolio-backend/internal/usecase/pricecache"
	"github.com/simaogato/portfolio-backend/internal/usecase/refresher"
)

// DefaultPath is used when CONFIG_PATH is unset
const DefaultPath = "var/conf/conf.yml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host           string        `yaml:"host"`
		HTTPPort       int           `yaml:"http_port"`
		GRPCPort       int           `yaml:"grpc_port"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	MarketData struct {
		BaseURL       string        `yaml:"base_url"`
		Range         string        `yaml:"range"`
		Interval      string        `yaml:"interval"`
		Timeout       time.Duration `yaml:"timeout"`
		RefreshPeriod time.Duration `yaml:"refresh_period"`
	} `yaml:"market_data"`
	Refresher struct {
		Enabled     bool   `yaml:"enabled"`
		Schedule    string `yaml:"schedule"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"refresher"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	// SeedBuckets are created empty at startup
	SeedBuckets []string `yaml:"seed_buckets"`
}

// Path returns the config file location, honouring CONFIG_PATH
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORTFOLIO_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORTFOLIO_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_HTTP_PORT: %w", err)
		}
		cfg.Server.HTTPPort = port
	}
	if v := os.Getenv("PORTFOLIO_GRPC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_GRPC_PORT: %w", err)
		}
		cfg.Server.GRPCPort = port
	}
	if v := os.Getenv("MARKET_DATA_BASE_URL"); v != "" {
		cfg.MarketData.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_REFRESH_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MARKET_DATA_REFRESH_PERIOD: %w", err)
		}
		cfg.MarketData.RefreshPeriod = d
	}
	if v := os.Getenv("REFRESHER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESHER_ENABLED: %w", err)
		}
		cfg.Refresher.Enabled = enabled
	}
	if v := os.Getenv("REFRESHER_SCHEDULE"); v != "" {
		cfg.Refresher.Schedule = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORTFOLIO_SEED_BUCKETS"); v != "" {
		cfg.SeedBuckets = strings.Split(v, ",")
	}

	// Defaults
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8345
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = 8346
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.MarketData.BaseURL == "" {
		cfg.MarketData.BaseURL = marketdata.DefaultBaseURL
	}
	if cfg.MarketData.Range == "" {
		cfg.MarketData.Range = marketdata.DefaultRange
	}
	if cfg.MarketData.Interval == "" {
		cfg.MarketData.Interval = marketdata.DefaultInterval
	}
	if cfg.MarketData.Timeout == 0 {
		cfg.MarketData.Timeout = 10 * time.Second
	}
	if cfg.MarketData.RefreshPeriod == 0 {
		cfg.MarketData.RefreshPeriod = pricecache.DefaultTTL
	}
	if cfg.Refresher.Schedule == "" {
		cfg.Refresher.Schedule = refresher.DefaultSchedule
	}
	if cfg.Refresher.Concurrency == 0 {
		cfg.Refresher.Concurrency = refresher.DefaultConcurrency
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port out of range: %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("server.http_port and server.grpc_port must differ")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}
	if c.MarketData.Timeout < 0 {
		return fmt.Errorf("market_data.timeout must not be negative")
	}
	if c.MarketData.RefreshPeriod < 0 {
		return fmt.Errorf("market_data.refresh_period must not be negative")
	}
	if c.Refresher.Concurrency < 0 {
		return fmt.Errorf("refresher.concurrency must not be negative")
	}
	if c.Refresher.Enabled {
		if _, err := cron.ParseStandard(c.Refresher.Schedule); err != nil {
			return fmt.Errorf("refresher.schedule: %w", err)
		}
	}
	return nil
}

// HTTPAddr returns the HTTP listen address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GRPCAddr returns the gRPC listen address
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
