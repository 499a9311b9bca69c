// Package config loads runtime configuration for storyd and the CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with BERBAGI_ (kelseyhightower/envconfig).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   storyd listen address
//	-u string   Story API base URL
//	-o string   app origin the cached shell is served from
//	-d string   SQLite database path
//	-v string   cache generation version tag
//	-b string   cache backend: sqlite, memory or s3
//	-i int      online check interval (seconds)
//	-s          activate a new generation without waiting
//	-l string   log level
//	-f string   log format: text, json or zap
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://story-api.dicoding.dev/v1",
//	  "online_check_interval": "3s",
//	  "cache_backend": "s3",
//	  "s3_bucket": "berbagi-cache"
//	}
//
// Malformed sources panic; LoadConfig is meant to run once at startup.
package config
