// Package config loads runtime configuration for the euronode CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values. Only flags the user
//     actually set take part, so a flag default never masks the file.
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000",
//	  "database_path": "session.db",
//	  "request_timeout": "30s",
//	  "log_level": "info",
//	  "strict_decoding": false,
//	  "download_dir": "download",
//	  "s3": {
//	    "region": "eu-central-1",
//	    "endpoint": "http://127.0.0.1:9000",
//	    "access_key_id": "minio",
//	    "secret_access_key": "minio123",
//	    "use_path_style": true
//	  }
//	}
package config
