package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/flagx"
)

var flagSpec = flagx.Spec{
	"a": true, "u": true, "o": true, "d": true, "v": true,
	"b": true, "i": true, "s": false, "l": true, "f": true,
}

// parseFlags overlays cfg with the flags it recognizes; other arguments are
// filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "storyd listen address")
	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "story API base URL")
	fs.StringVar(&cfg.AppBaseURL, "o", cfg.AppBaseURL, "app origin")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "database path")
	fs.StringVar(&cfg.CacheVersion, "v", cfg.CacheVersion, "cache generation version")
	fs.StringVar(&cfg.CacheBackend, "b", cfg.CacheBackend, "cache backend (sqlite, memory, s3)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.BoolVar(&cfg.SkipWaiting, "s", cfg.SkipWaiting, "activate new generations immediately")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, zap)")

	if err := fs.Parse(flagx.FilterArgs(args, flagSpec)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}
