package config

import (
	"os"
	"time"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config holds runtime settings shared by storyd and the CLI.
type Config struct {
	ListenAddr          string        `envconfig:"LISTEN_ADDR"`
	APIBaseURL          string        `envconfig:"API_BASE_URL"`
	AppBaseURL          string        `envconfig:"APP_BASE_URL"`
	DBPath              string        `envconfig:"DB_PATH"`
	StorePassphrase     string        `envconfig:"STORE_PASSPHRASE"`
	CacheVersion        string        `envconfig:"CACHE_VERSION"`
	CacheBackend        string        `envconfig:"CACHE_BACKEND"`
	PrecacheAssets      []string      `envconfig:"PRECACHE_ASSETS"`
	SkipWaiting         bool          `envconfig:"SKIP_WAITING"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT"`
	LogLevel            string        `envconfig:"LOG_LEVEL"`
	LogFormat           string        `envconfig:"LOG_FORMAT"`

	S3Region    string `envconfig:"S3_REGION"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Prefix    string `envconfig:"S3_PREFIX"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:8080"
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.AppBaseURL = "http://127.0.0.1:8080/"
	c.DBPath = "berbagi-story.db"
	c.CacheVersion = "v2"
	c.CacheBackend = BackendSQLite
	c.PrecacheAssets = []string{
		"./",
		"./index.html",
		"./manifest.json",
		"./icons/icon-96x96.png",
		"./icons/icon-144x144.png",
		"./icons/icon-192x192.png",
		"./icons/icon-512x512.png",
	}
	c.OnlineCheckInterval = 3 * time.Second
	c.HTTPTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.S3Endpoint = "http://127.0.0.1:9000/"
	c.S3Bucket = "berbagi-cache"
	c.S3Prefix = "sw/"
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and the process flags, in that order.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
