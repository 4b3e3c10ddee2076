// Package config loads runtime configuration for the engram CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: ENGRAM_API_URL, ENGRAM_SITE_URL, ENGRAM_SESSION_DB and
//     ENGRAM_LOG_LEVEL, with a .env file in the working directory loaded first.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL
//	-s string   session database path
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://api.openengram.ai",
//	  "site_url": "https://openengram.ai",
//	  "session_db": "/home/me/.config/openengram/engram.db",
//	  "request_timeout": "10s",
//	  "toast_duration": "3s",
//	  "copy_feedback_duration": "2s",
//	  "log_level": "info"
//	}
package config
