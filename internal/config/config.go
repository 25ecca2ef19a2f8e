// Package config loads pooppdf defaults from a YAML file.
// Command-line flags override every value read here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-pooppdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxFileSize limits config input to prevent memory exhaustion (1MB).
const MaxFileSize = 1 << 20

// Field length limits.
const (
	MaxTitleLength    = 200  // Header title
	MaxPathLength     = 4096 // Output, log and browser paths
	MaxSelectorLength = 1024 // CSS selector
)

// AppDirName is the directory searched under the user config dir.
const AppDirName = "pooppdf"

// Config holds file-level defaults for a capture.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Header  HeaderConfig  `yaml:"header"`
	Footer  FooterConfig  `yaml:"footer"`
	Wait    WaitConfig    `yaml:"wait"`
	Logging LoggingConfig `yaml:"logging"`
}

// BrowserConfig selects and tunes the browser engine.
type BrowserConfig struct {
	Engine    string `yaml:"engine"`    // "rod" or "chromedp" (empty = rod)
	Timeout   string `yaml:"timeout"`   // Go duration, e.g. "45s" (empty = 30s)
	Bin       string `yaml:"bin"`       // Chrome binary (empty = ROD_BROWSER_BIN or auto)
	NoSandbox bool   `yaml:"noSandbox"` // Needed in most containers
}

// OutputConfig defines where the PDF goes.
type OutputConfig struct {
	Path string `yaml:"path"` // File path or s3://bucket/key (empty = output.pdf)
}

// HeaderConfig defines the page header.
type HeaderConfig struct {
	Title string `yaml:"title"` // Empty = no header
}

// FooterConfig defines the page footer.
type FooterConfig struct {
	PageNumbers bool `yaml:"pageNumbers"`
}

// WaitConfig defines extra readiness conditions.
type WaitConfig struct {
	Selector string `yaml:"selector"` // Empty = network idle only
}

// LoggingConfig defines the log file.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty = pooppdf.log
}

// TimeoutDuration parses Browser.Timeout. It returns 0 when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Browser.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Browser.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: browser.timeout: must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks enumerations, durations and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Browser.Engine) {
	case "", "rod", "chromedp":
		// valid
	default:
		return fmt.Errorf("%w: browser.engine: %q (must be rod or chromedp)", ErrInvalidValue, c.Browser.Engine)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"output.path", c.Output.Path, MaxPathLength},
		{"header.title", c.Header.Title, MaxTitleLength},
		{"wait.selector", c.Wait.Selector, MaxSelectorLength},
		{"logging.path", c.Logging.Path, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with every option unset.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parse decodes data strictly: unknown keys are errors.
func parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// current directory, then the user config directory, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
