package config

import (
	"encoding/json"
	"os"

	"github.com/beaux-riel/openengram-site/internal/flagx"
	"github.com/beaux-riel/openengram-site/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
// Zero and empty values leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	SiteURL              string         `json:"site_url"`
	SessionDBPath        string         `json:"session_db"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	ToastDuration        timex.Duration `json:"toast_duration"`
	CopyFeedbackDuration timex.Duration `json:"copy_feedback_duration"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.SiteURL != "" {
		cfg.SiteURL = jc.SiteURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ToastDuration.Duration > 0 {
		cfg.ToastDuration = jc.ToastDuration.Duration
	}
	if jc.CopyFeedbackDuration.Duration > 0 {
		cfg.CopyFeedbackDuration = jc.CopyFeedbackDuration.Duration
	}
}
