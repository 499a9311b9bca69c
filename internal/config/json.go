package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/berbagi/internal/flagx"
	"github.com/dmitrijs2005/berbagi/internal/timex"
)

// JsonConfig is the JSON file shape. Only keys present in the file
// override the defaults.
type JsonConfig struct {
	ListenAddr          *string         `json:"listen_addr"`
	APIBaseURL          *string         `json:"api_base_url"`
	AppBaseURL          *string         `json:"app_base_url"`
	DBPath              *string         `json:"db_path"`
	StorePassphrase     *string         `json:"store_passphrase"`
	CacheVersion        *string         `json:"cache_version"`
	CacheBackend        *string         `json:"cache_backend"`
	PrecacheAssets      []string        `json:"precache_assets"`
	SkipWaiting         *bool           `json:"skip_waiting"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	HTTPTimeout         *timex.Duration `json:"http_timeout"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	S3Region            *string         `json:"s3_region"`
	S3Endpoint          *string         `json:"s3_endpoint"`
	S3AccessKey         *string         `json:"s3_access_key"`
	S3SecretKey         *string         `json:"s3_secret_key"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Prefix            *string         `json:"s3_prefix"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// Read and decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.AppBaseURL, jc.AppBaseURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.StorePassphrase, jc.StorePassphrase)
	setString(&cfg.CacheVersion, jc.CacheVersion)
	setString(&cfg.CacheBackend, jc.CacheBackend)
	if jc.PrecacheAssets != nil {
		cfg.PrecacheAssets = jc.PrecacheAssets
	}
	if jc.SkipWaiting != nil {
		cfg.SkipWaiting = *jc.SkipWaiting
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Prefix, jc.S3Prefix)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
