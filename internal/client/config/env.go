package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL    = "ENGRAM_API_URL"
	EnvSiteURL   = "ENGRAM_SITE_URL"
	EnvSessionDB = "ENGRAM_SESSION_DB"
	EnvLogLevel  = "ENGRAM_LOG_LEVEL"
)

// dotenvFiles are loaded, if present, before reading the environment.
// Variables already set in the process environment win.
var dotenvFiles = []string{".env"}

// parseEnv overlays cfg with non-empty ENGRAM_* variables.
func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		// a missing .env is the common case
		_ = godotenv.Load(f)
	}

	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.APIBaseURL, EnvAPIURL)
	set(&cfg.SiteURL, EnvSiteURL)
	set(&cfg.SessionDBPath, EnvSessionDB)
	set(&cfg.LogLevel, EnvLogLevel)
}
