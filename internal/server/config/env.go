package config

import "github.com/ilyakaznacheev/cleanenv"

// readEnv is a seam for tests.
var readEnv = cleanenv.ReadEnv

// parseEnv overlays LIFESTYLE_* environment variables. Variables that are not
// set leave the current value untouched. Durations use time.ParseDuration
// syntax ("15m").
func parseEnv(config *Config) {
	if err := readEnv(config); err != nil {
		panic(err)
	}
}

// EnvUsage describes the supported environment variables.
func EnvUsage() string {
	d, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return d
}
