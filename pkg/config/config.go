package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Coinbase struct {
		BaseURL        string        `yaml:"base_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ExportSleep    time.Duration `yaml:"export_sleep"`
		ProductsTTL    time.Duration `yaml:"products_ttl"`
	} `yaml:"coinbase"`
	CoinGecko struct {
		BaseURL        string        `yaml:"base_url"`
		DemoKey        string        `yaml:"demo_key"`
		ProKey         string        `yaml:"pro_key"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		CoinsTTL       time.Duration `yaml:"coins_ttl"`
	} `yaml:"coingecko"`
	Export struct {
		Dir          string        `yaml:"dir"`
		JobRetention time.Duration `yaml:"job_retention"`
		MaxJobs      int           `yaml:"max_jobs"`
	} `yaml:"export"`
	Cache struct {
		Backend string `yaml:"backend"` // memory, redis, layered
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("COINGECKO_DEMO_KEY"); v != "" {
		c.CoinGecko.DemoKey = v
	}
	if v := os.Getenv("COINGECKO_PRO_KEY"); v != "" {
		c.CoinGecko.ProKey = v
	}
	if v := os.Getenv("COINBASE_EXPORT_SLEEP"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Coinbase.ExportSleep = d
		}
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Coinbase.BaseURL == "" {
		return fmt.Errorf("coinbase.base_url is required")
	}
	if c.CoinGecko.BaseURL == "" {
		return fmt.Errorf("coingecko.base_url is required")
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}
	switch c.Cache.Backend {
	case "", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	return nil
}
