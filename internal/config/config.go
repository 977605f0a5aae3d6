package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxWorkers is the upper bound on the worker pool.
const MaxWorkers = 10

// DefaultIndustries is the industry allow-list used when none is configured.
var DefaultIndustries = []string{
	"Banks - Diversified",
	"Software - Application",
	"Consumer Electronics",
}

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		Auth      string `yaml:"auth"`
		Timeout   string `yaml:"timeout"`
		Retries   *int   `yaml:"retries"`
		RateLimit *int   `yaml:"rate_limit"`
	} `yaml:"api"`
	ETL struct {
		Workers    int      `yaml:"workers"`
		Industries []string `yaml:"industries"`
		RunTimeout string   `yaml:"run_timeout"`
	} `yaml:"etl"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level    string   `yaml:"level"`
		Outputs  []string `yaml:"outputs"`
		FilePath string   `yaml:"file_path"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FIINDO_API_BASE"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("FIINDO_AUTH"); v != "" {
		c.API.Auth = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("HTTP_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_RETRIES: %w", err)
		}
		c.API.Retries = &n
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_RATE_LIMIT: %w", err)
		}
		c.API.RateLimit = &n
	}
	if v := os.Getenv("ETL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ETL_WORKERS: %w", err)
		}
		c.ETL.Workers = n
	}
	if v := os.Getenv("ETL_INDUSTRIES"); v != "" {
		var industries []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				industries = append(industries, s)
			}
		}
		c.ETL.Industries = industries
	}
	if v := os.Getenv("ETL_RUN_TIMEOUT"); v != "" {
		c.ETL.RunTimeout = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://api.test.fiindo.com"
	}
	if c.API.Auth == "" {
		c.API.Auth = "first.last"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "10s"
	}
	if c.API.Retries == nil {
		n := 3
		c.API.Retries = &n
	}
	if c.API.RateLimit == nil {
		n := 10
		c.API.RateLimit = &n
	}
	if c.ETL.Workers == 0 {
		c.ETL.Workers = 8
	}
	if len(c.ETL.Industries) == 0 {
		c.ETL.Industries = append([]string(nil), DefaultIndustries...)
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/fiindo_challenge.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if len(c.Logging.Outputs) == 0 {
		c.Logging.Outputs = []string{"console"}
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/fiindo-etl.log"
	}
}

// Validate checks that all required fields are set and within bounds.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Auth == "" {
		return fmt.Errorf("api.auth is required")
	}
	if _, err := c.GetTimeout(); err != nil {
		return err
	}
	if c.GetRetries() < 0 {
		return fmt.Errorf("api.retries must not be negative")
	}
	if c.GetRateLimit() < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.ETL.Workers < 1 || c.ETL.Workers > MaxWorkers {
		return fmt.Errorf("etl.workers must be between 1 and %d, got %d", MaxWorkers, c.ETL.Workers)
	}
	if len(c.ETL.Industries) == 0 {
		return fmt.Errorf("etl.industries must not be empty")
	}
	seen := make(map[string]bool, len(c.ETL.Industries))
	for _, ind := range c.ETL.Industries {
		if strings.TrimSpace(ind) == "" {
			return fmt.Errorf("etl.industries contains a blank entry")
		}
		if seen[ind] {
			return fmt.Errorf("etl.industries contains %q twice", ind)
		}
		seen[ind] = true
	}
	if _, err := c.GetRunTimeout(); err != nil {
		return err
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	return nil
}

// GetTimeout returns the per-request timeout. Plain integers are seconds.
func (c *Config) GetTimeout() (time.Duration, error) {
	d, err := parseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("api.timeout must be positive")
	}
	return d, nil
}

// GetRunTimeout returns the overall run deadline; zero means none.
func (c *Config) GetRunTimeout() (time.Duration, error) {
	if c.ETL.RunTimeout == "" {
		return 0, nil
	}
	d, err := parseDuration(c.ETL.RunTimeout)
	if err != nil {
		return 0, fmt.Errorf("etl.run_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("etl.run_timeout must not be negative")
	}
	return d, nil
}

func (c *Config) GetRetries() int {
	if c.API.Retries == nil {
		return 0
	}
	return *c.API.Retries
}

func (c *Config) GetRateLimit() int {
	if c.API.RateLimit == nil {
		return 0
	}
	return *c.API.RateLimit
}

func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
