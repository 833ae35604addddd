package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// S3 holds the optional settings for s3:// model artifacts.
type S3 struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Config holds runtime settings for the euronode CLI.
//
// RequestTimeout of zero means requests are bounded only by their context.
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
	StrictDecoding bool
	DownloadDir    string
	S3             S3
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "session.db"
	c.RequestTimeout = 0
	c.LogLevel = "info"
	c.StrictDecoding = false
	c.DownloadDir = "download"
}

// Load builds a Config from defaults, the file named by flags (if any) and
// the flags themselves. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if flags != nil && flags.ConfigPath != "" {
		if err := loadFile(cfg, flags.ConfigPath); err != nil {
			return nil, err
		}
	}
	if flags != nil {
		flags.apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url %q: must be an http(s) URL", c.APIBaseURL)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	return nil
}
