package config

import (
	"os"
	"time"

	"github.com/beaux-riel/openengram-site/internal/filex"
)

const (
	appDirName        = "openengram"
	sessionDBFileName = "engram.db"
)

// Config holds runtime settings for the engram CLI.
//
// Fields:
//   - APIBaseURL: root of the OpenEngram HTTP API.
//   - SiteURL: public site; the docs link in the banner and dashboard.
//   - SessionDBPath: SQLite file that keeps the session between runs.
//   - RequestTimeout: deadline for a single backend call.
//   - ToastDuration / CopyFeedbackDuration: lifetimes of transient indicators.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL           string
	SiteURL              string
	SessionDBPath        string
	RequestTimeout       time.Duration
	ToastDuration        time.Duration
	CopyFeedbackDuration time.Duration
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.openengram.ai"
	c.SiteURL = "https://openengram.ai"
	c.SessionDBPath = defaultSessionDBPath()
	c.RequestTimeout = 10 * time.Second
	c.ToastDuration = 3 * time.Second
	c.CopyFeedbackDuration = 2 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment (including a .env file), an optional JSON file and finally
// command-line flags. Later sources take precedence over earlier ones.
//
// It panics on an unreadable JSON file or malformed flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

func defaultSessionDBPath() string {
	p, err := filex.UserDataPath(appDirName, sessionDBFileName)
	if err != nil {
		return sessionDBFileName
	}
	return p
}
