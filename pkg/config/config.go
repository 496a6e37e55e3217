package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the crawler
type Config struct {
	Feed          FeedConfig         `yaml:"feed" toml:"feed" json:"feed"`
	Crawl         CrawlConfig        `yaml:"crawl" toml:"crawl" json:"crawl"`
	Output        OutputConfig       `yaml:"output" toml:"output" json:"output"`
	Checkpoint    CheckpointConfig   `yaml:"checkpoint" toml:"checkpoint" json:"checkpoint"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" toml:"logging" json:"logging"`
	Metrics       MetricsConfig      `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// FeedConfig describes the two remote hosts
type FeedConfig struct {
	BaseURL        string        `yaml:"base_url" toml:"base_url" json:"base_url"`
	ImageBaseURL   string        `yaml:"image_base_url" toml:"image_base_url" json:"image_base_url"`
	UserAgent      string        `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout"`
}

// CrawlConfig holds pacing and retry settings for the crawl loop
type CrawlConfig struct {
	PageDelay     time.Duration `yaml:"page_delay" toml:"page_delay" json:"page_delay"`
	ImageDelay    time.Duration `yaml:"image_delay" toml:"image_delay" json:"image_delay"`
	RetryCooldown time.Duration `yaml:"retry_cooldown" toml:"retry_cooldown" json:"retry_cooldown"`
	// MaxPageAttempts bounds attempts per page; 0 retries forever.
	MaxPageAttempts    int  `yaml:"max_page_attempts" toml:"max_page_attempts" json:"max_page_attempts"`
	PreserveTimestamps bool `yaml:"preserve_timestamps" toml:"preserve_timestamps" json:"preserve_timestamps"`
}

// OutputConfig controls where images and record stores are written
type OutputConfig struct {
	Directory string `yaml:"directory" toml:"directory" json:"directory"`
}

// CheckpointConfig locates the resume file. An empty path uses the data directory.
type CheckpointConfig struct {
	Path string `yaml:"path" toml:"path" json:"path"`
}

// RateLimitConfig is a hard ceiling on requests, on top of the fixed pacing delays
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" toml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int `yaml:"burst" toml:"burst" json:"burst"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled" json:"enabled"`
	Beep       bool `yaml:"beep" toml:"beep" json:"beep"`
	OnComplete bool `yaml:"on_complete" toml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" toml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

// MetricsConfig controls the prometheus textfile written at the end of a run
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" toml:"textfile_path" json:"textfile_path"`
}

// DefaultConfig returns a Config instance with the crawler's stock behavior
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			BaseURL:        "https://imgur.com",
			ImageBaseURL:   "https://i.imgur.com",
			UserAgent:      "imgurr/1.0 (+https://github.com/imgurr/imgurr)",
			RequestTimeout: 60 * time.Second,
		},
		Crawl: CrawlConfig{
			PageDelay:          1300 * time.Millisecond,
			ImageDelay:         1300 * time.Millisecond,
			RetryCooldown:      5 * time.Second,
			MaxPageAttempts:    3,
			PreserveTimestamps: false,
		},
		Output: OutputConfig{
			Directory: ".",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			Burst:             5,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			Beep:       true,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from IMGURR_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("IMGURR_FEED_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("IMGURR_IMAGE_URL"); v != "" {
		c.Feed.ImageBaseURL = v
	}
	if v := os.Getenv("IMGURR_USER_AGENT"); v != "" {
		c.Feed.UserAgent = v
	}
	if v := os.Getenv("IMGURR_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("IMGURR_CHECKPOINT_FILE"); v != "" {
		c.Checkpoint.Path = v
	}
	if v := os.Getenv("IMGURR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IMGURR_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("IMGURR_METRICS_FILE"); v != "" {
		c.Metrics.TextfilePath = v
	}

	if v := os.Getenv("IMGURR_MAX_PAGE_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IMGURR_MAX_PAGE_ATTEMPTS: %w", err))
		} else {
			c.Crawl.MaxPageAttempts = n
		}
	}
	if v := os.Getenv("IMGURR_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IMGURR_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("IMGURR_PRESERVE_MTIME"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IMGURR_PRESERVE_MTIME: %w", err))
		} else {
			c.Crawl.PreserveTimestamps = b
		}
	}
	if v := os.Getenv("IMGURR_NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	}
}

// findConfigFile searches for a config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".imgurr.yaml",
		".imgurr.yml",
		".imgurr.toml",
		filepath.Join(home, ".config", "imgurr", "config.yaml"),
		filepath.Join(home, ".config", "imgurr", "config.toml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{"feed base URL": c.Feed.BaseURL, "image base URL": c.Feed.ImageBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s %q must be an absolute http(s) URL", name, raw))
		}
	}
	if c.Feed.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Crawl.PageDelay < 0 || c.Crawl.ImageDelay < 0 || c.Crawl.RetryCooldown < 0 {
		errs = append(errs, errors.New("crawl delays cannot be negative"))
	}
	if c.Crawl.MaxPageAttempts < 0 {
		errs = append(errs, errors.New("max page attempts cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["checkpoint"].(string); ok && v != "" {
		c.Checkpoint.Path = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["max-attempts"].(int); ok {
		c.Crawl.MaxPageAttempts = v
	}
	if v, ok := flags["preserve-mtime"].(bool); ok {
		c.Crawl.PreserveTimestamps = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["metrics-file"].(string); ok && v != "" {
		c.Metrics.TextfilePath = v
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment > .env files > config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".imgurr.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}
