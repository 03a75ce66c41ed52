package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-gfmrender/internal/dateutil"
	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxThemeLength     = 50   // Theme, style and template names
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxDateLength      = 100  // Literal date or auto:FORMAT
	MaxURLLength       = 2048 // Browser limit
	MaxCommandLength   = 256  // Diagram command
	MaxAddrLength      = 255  // host:port
	MaxConcurrency     = 64   // Parallel diagram renders per page
	MaxWorkers         = 8    // Pooled enhancers, one browser each
	MaxTimeout         = 10 * time.Minute
	MaxDurationLength  = 20 // "30s", "1m30s"
	MaxDebounceTimeout = 10 * time.Second
)

// Diagram backends.
const (
	BackendBrowser = "browser" // mermaid in headless Chrome
	BackendCommand = "mmdc"    // mermaid CLI
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for rendering.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Theme   string        `yaml:"theme"` // Syntax highlighting theme (empty = "white")
	Page    PageConfig    `yaml:"page"`
	Assets  AssetsConfig  `yaml:"assets"`
	Math    MathConfig    `yaml:"math"`
	Diagram DiagramConfig `yaml:"diagram"`
	Browser BrowserConfig `yaml:"browser"`
	Workers int           `yaml:"workers"` // Pooled enhancers (0 = auto)
	Log     LogConfig     `yaml:"log"`
	Serve   ServeConfig   `yaml:"serve"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// PageConfig defines the standalone page around rendered Markdown.
type PageConfig struct {
	Style    string `yaml:"style"`    // Layout stylesheet (empty = "github", "none" = theme only)
	Template string `yaml:"template"` // Page template (empty = "page")
	Date     string `yaml:"date"`     // Footer date: text, "auto" or "auto:FORMAT" (empty = none)
}

// AssetsConfig defines where custom styles and templates live.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// MathConfig defines math rendering options.
type MathConfig struct {
	Disabled bool `yaml:"disabled"`
}

// DiagramConfig defines diagram rendering options.
type DiagramConfig struct {
	Disabled    bool   `yaml:"disabled"`
	Backend     string `yaml:"backend"`     // "browser" or "mmdc" (default: "browser")
	Theme       string `yaml:"theme"`       // mermaid theme (default: "neutral")
	Concurrency int    `yaml:"concurrency"` // 0 = library default
	Command     string `yaml:"command"`     // mmdc path (default: "mmdc")
}

// BrowserConfig defines the headless browser backend.
type BrowserConfig struct {
	KaTeXScript   string `yaml:"katexScript"`   // Empty = CDN default
	KaTeXCSS      string `yaml:"katexCSS"`      // Stylesheet linked from rendered pages
	MermaidScript string `yaml:"mermaidScript"` // Empty = CDN default
	Timeout       string `yaml:"timeout"`       // Per render, e.g. "30s" (empty = default)
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ServeConfig defines the preview server.
type ServeConfig struct {
	Addr     string `yaml:"addr"`     // Listen address (default: "127.0.0.1:8080")
	Debounce string `yaml:"debounce"` // File event coalescing, e.g. "100ms"
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"theme", c.Theme, MaxThemeLength},
		{"page.style", c.Page.Style, MaxThemeLength},
		{"page.template", c.Page.Template, MaxThemeLength},
		{"page.date", c.Page.Date, MaxDateLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"diagram.theme", c.Diagram.Theme, MaxThemeLength},
		{"diagram.command", c.Diagram.Command, MaxCommandLength},
		{"browser.katexScript", c.Browser.KaTeXScript, MaxURLLength},
		{"browser.katexCSS", c.Browser.KaTeXCSS, MaxURLLength},
		{"browser.mermaidScript", c.Browser.MermaidScript, MaxURLLength},
		{"browser.timeout", c.Browser.Timeout, MaxDurationLength},
		{"serve.addr", c.Serve.Addr, MaxAddrLength},
		{"serve.debounce", c.Serve.Debounce, MaxDurationLength},
	}
	for _, chk := range checks {
		if err := validateFieldLength(chk.field, chk.value, chk.max); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Diagram.Backend) {
	case "", BackendBrowser, BackendCommand:
	default:
		return fmt.Errorf("%w: diagram.backend %q (must be %s or %s)", ErrInvalidValue, c.Diagram.Backend, BackendBrowser, BackendCommand)
	}
	if c.Diagram.Concurrency < 0 || c.Diagram.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: diagram.concurrency must be between 0 and %d, got %d", ErrInvalidValue, MaxConcurrency, c.Diagram.Concurrency)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	if _, err := dateutil.ResolveDate(c.Page.Date, time.Time{}); err != nil {
		return fmt.Errorf("%w: page.date: %v", ErrInvalidValue, err)
	}
	if _, err := c.BrowserTimeout(); err != nil {
		return err
	}
	if _, err := c.ServeDebounce(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be %s or %s)", ErrInvalidValue, c.Log.Format, LogFormatText, LogFormatJSON)
	}

	return nil
}

// BrowserTimeout parses browser.timeout. Zero means the renderer default.
func (c *Config) BrowserTimeout() (time.Duration, error) {
	return parseDuration("browser.timeout", c.Browser.Timeout, MaxTimeout)
}

// ServeDebounce parses serve.debounce. Zero means the watcher default.
func (c *Config) ServeDebounce() (time.Duration, error) {
	return parseDuration("serve.debounce", c.Serve.Debounce, MaxDebounceTimeout)
}

func parseDuration(field, value string, limit time.Duration) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, field, value, err)
	}
	if d <= 0 || d > limit {
		return 0, fmt.Errorf("%w: %s must be positive and at most %s, got %s", ErrInvalidValue, field, limit, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with every renderer enabled and
// library defaults everywhere else.
func DefaultConfig() *Config {
	return &Config{
		Diagram: DiagramConfig{Backend: BackendBrowser},
		Log:     LogConfig{Level: "info", Format: LogFormatText},
		Serve:   ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
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

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || fileutil.HasExt(s, ".yaml", ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-gfmrender/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-gfmrender", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
