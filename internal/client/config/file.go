package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/euronode/euronode/internal/timex"
)

// fileConfig is a DTO used exclusively for unmarshalling. Pointer fields
// tell "absent" apart from zero values so a file can set false or 0.
type fileConfig struct {
	APIBaseURL     string          `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath   string          `json:"database_path" yaml:"database_path"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	StrictDecoding *bool           `json:"strict_decoding" yaml:"strict_decoding"`
	DownloadDir    string          `json:"download_dir" yaml:"download_dir"`
	S3             struct {
		Region          string `json:"region" yaml:"region"`
		Endpoint        string `json:"endpoint" yaml:"endpoint"`
		AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
		UsePathStyle    *bool  `json:"use_path_style" yaml:"use_path_style"`
	} `json:"s3" yaml:"s3"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.overlay(cfg)
	return nil
}

func (fc *fileConfig) overlay(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.StrictDecoding != nil {
		cfg.StrictDecoding = *fc.StrictDecoding
	}

	setString(&cfg.S3.Region, fc.S3.Region)
	setString(&cfg.S3.Endpoint, fc.S3.Endpoint)
	setString(&cfg.S3.AccessKeyID, fc.S3.AccessKeyID)
	setString(&cfg.S3.SecretAccessKey, fc.S3.SecretAccessKey)
	if fc.S3.UsePathStyle != nil {
		cfg.S3.UsePathStyle = *fc.S3.UsePathStyle
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
