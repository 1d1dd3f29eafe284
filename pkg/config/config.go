package config

import (
	"fmt"
	"os"
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
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Oracle struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		ExtractModel   string        `yaml:"extract_model"`
		SelectModel    string        `yaml:"select_model"`
		SynthesisModel string        `yaml:"synthesis_model"`
		Temperature    float32       `yaml:"temperature"`
		MaxTokens      int           `yaml:"max_tokens"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"oracle"`
	Yahoo struct {
		SearchURL string        `yaml:"search_url"`
		QuoteURL  string        `yaml:"quote_url"`
		ChartURL  string        `yaml:"chart_url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"yahoo"`
	Cache struct {
		ExtractMaxSize int           `yaml:"extract_max_size"`
		TickerMaxSize  int           `yaml:"ticker_max_size"`
		InfoTTL        time.Duration `yaml:"info_ttl"`
		InfoMaxSize    int           `yaml:"info_max_size"`
		ReturnsTTL     time.Duration `yaml:"returns_ttl"`
		ReturnsMaxSize int           `yaml:"returns_max_size"`
		Redis          struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables before validating, so secrets can stay out of the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 60 * time.Second
	}
	if c.Oracle.MaxTokens == 0 {
		c.Oracle.MaxTokens = 1024
	}
	if c.Yahoo.SearchURL == "" {
		c.Yahoo.SearchURL = "https://query2.finance.yahoo.com/v1/finance/search"
	}
	if c.Yahoo.QuoteURL == "" {
		c.Yahoo.QuoteURL = "https://query2.finance.yahoo.com/v7/finance/quote"
	}
	if c.Yahoo.ChartURL == "" {
		c.Yahoo.ChartURL = "https://query2.finance.yahoo.com/v8/finance/chart"
	}
	if c.Yahoo.UserAgent == "" {
		c.Yahoo.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
	}
	if c.Yahoo.Timeout == 0 {
		c.Yahoo.Timeout = 15 * time.Second
	}
	if c.Cache.ExtractMaxSize == 0 {
		c.Cache.ExtractMaxSize = 2048
	}
	if c.Cache.TickerMaxSize == 0 {
		c.Cache.TickerMaxSize = 2048
	}
	if c.Cache.InfoTTL == 0 {
		c.Cache.InfoTTL = 600 * time.Second
	}
	if c.Cache.InfoMaxSize == 0 {
		c.Cache.InfoMaxSize = 1024
	}
	if c.Cache.ReturnsTTL == 0 {
		c.Cache.ReturnsTTL = 3600 * time.Second
	}
	if c.Cache.ReturnsMaxSize == 0 {
		c.Cache.ReturnsMaxSize = 2048
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillPerSec == 0 {
		c.RateLimit.RefillPerSec = 0.5
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("oracle.api_key is required")
	}
	if c.Oracle.ExtractModel == "" {
		return fmt.Errorf("oracle.extract_model is required")
	}
	if c.Oracle.SelectModel == "" {
		return fmt.Errorf("oracle.select_model is required")
	}
	if c.Oracle.SynthesisModel == "" {
		return fmt.Errorf("oracle.synthesis_model is required")
	}
	return nil
}
