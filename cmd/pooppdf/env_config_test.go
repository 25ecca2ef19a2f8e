package main

// Notes:
// - Tests use t.Setenv() which prevents t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("all variables", func(t *testing.T) {
		t.Setenv("POOPPDF_CONFIG", "/etc/pooppdf/capture.yaml")
		t.Setenv("POOPPDF_TIMEOUT", "2m")
		t.Setenv("POOPPDF_ENGINE", "chromedp")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "/etc/pooppdf/capture.yaml" {
			t.Errorf("ConfigPath = %q", cfg.ConfigPath)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
		}
		if cfg.Engine != "chromedp" {
			t.Errorf("Engine = %q, want chromedp", cfg.Engine)
		}
	})

	t.Run("invalid timeout is ignored", func(t *testing.T) {
		t.Setenv("POOPPDF_TIMEOUT", "soon")

		if cfg := loadEnvConfig(); cfg.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", cfg.Timeout)
		}
	})

	t.Run("negative timeout is ignored", func(t *testing.T) {
		t.Setenv("POOPPDF_TIMEOUT", "-1s")

		if cfg := loadEnvConfig(); cfg.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", cfg.Timeout)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("POOPPDF_TIMOUT", "1m")
	t.Setenv("POOPPDF_ENGINE", "rod")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "POOPPDF_TIMOUT") {
		t.Errorf("expected warning for POOPPDF_TIMOUT, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "POOPPDF_ENGINE") {
		t.Errorf("known variable should not warn, got %q", buf.String())
	}
}
