package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // POOPPDF_CONFIG: config file name or path
	Timeout    time.Duration // POOPPDF_TIMEOUT: capture timeout
	Engine     string        // POOPPDF_ENGINE: rod or chromedp
}

// knownEnvVars lists valid POOPPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"POOPPDF_CONFIG":  true,
	"POOPPDF_TIMEOUT": true,
	"POOPPDF_ENGINE":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid or non-positive timeouts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("POOPPDF_CONFIG"),
		Engine:     os.Getenv("POOPPDF_ENGINE"),
	}

	if timeout := os.Getenv("POOPPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized POOPPDF_* variables.
// Helps catch typos like POOPPDF_TIMOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "POOPPDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}
