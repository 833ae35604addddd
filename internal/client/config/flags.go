package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags are the command-line overrides. Register them on a cobra command's
// persistent flag set; Load applies only those the user changed.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath     string
	APIBaseURL     string
	DatabasePath   string
	LogLevel       string
	StrictDecoding bool
	RequestTimeout time.Duration
	DownloadDir    string
}

func (f *Flags) Register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to a JSON or YAML config file")
	fs.StringVarP(&f.APIBaseURL, "api", "a", "", "base URL of the euronode API")
	fs.StringVar(&f.DatabasePath, "db", "", "path of the local session database")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.StrictDecoding, "strict", false, "fail on unexpected response shapes instead of showing empty lists")
	fs.DurationVar(&f.RequestTimeout, "timeout", 0, "per-request timeout, 0 for none")
	fs.StringVar(&f.DownloadDir, "download-dir", "", "directory for downloaded model files")
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

func (f *Flags) apply(cfg *Config) {
	if f.changed("api") {
		cfg.APIBaseURL = f.APIBaseURL
	}
	if f.changed("db") {
		cfg.DatabasePath = f.DatabasePath
	}
	if f.changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if f.changed("strict") {
		cfg.StrictDecoding = f.StrictDecoding
	}
	if f.changed("timeout") {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if f.changed("download-dir") {
		cfg.DownloadDir = f.DownloadDir
	}
}
