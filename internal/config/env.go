package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix is prepended to every variable name, e.g. BERBAGI_API_BASE_URL.
const EnvPrefix = "BERBAGI"

// parseEnv overlays cfg with BERBAGI_* variables. Unset variables keep the
// current value; malformed ones panic.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}
}
