package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-gfmrender/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // GFMRENDER_CONFIG: config file path
	Theme      string        // GFMRENDER_THEME: highlight theme
	Style      string        // GFMRENDER_STYLE: page stylesheet
	Timeout    time.Duration // GFMRENDER_TIMEOUT: per-render browser timeout
	Workers    int           // GFMRENDER_WORKERS: parallel workers

	// Tier 2 - Backends and logging
	DiagramBackend string // GFMRENDER_DIAGRAM_BACKEND: browser or mmdc
	LogLevel       string // GFMRENDER_LOG_LEVEL: debug, info, warn, error

	// Tier 3 - I/O and server
	InputDir  string // GFMRENDER_INPUT_DIR: default input directory
	OutputDir string // GFMRENDER_OUTPUT_DIR: default output directory
	Addr      string // GFMRENDER_ADDR: preview server address
	AssetsDir string // GFMRENDER_ASSETS_DIR: custom styles and templates
}

// knownEnvVars lists valid GFMRENDER_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"GFMRENDER_CONFIG":  true,
	"GFMRENDER_THEME":   true,
	"GFMRENDER_STYLE":   true,
	"GFMRENDER_TIMEOUT": true,
	"GFMRENDER_WORKERS": true,
	// Tier 2 - Backends and logging
	"GFMRENDER_DIAGRAM_BACKEND": true,
	"GFMRENDER_LOG_LEVEL":       true,
	// Tier 3 - I/O and server
	"GFMRENDER_INPUT_DIR":  true,
	"GFMRENDER_OUTPUT_DIR": true,
	"GFMRENDER_ADDR":       true,
	"GFMRENDER_ASSETS_DIR": true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid durations and counts are ignored rather than reported.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("GFMRENDER_CONFIG"),
		Theme:          os.Getenv("GFMRENDER_THEME"),
		Style:          os.Getenv("GFMRENDER_STYLE"),
		DiagramBackend: os.Getenv("GFMRENDER_DIAGRAM_BACKEND"),
		LogLevel:       os.Getenv("GFMRENDER_LOG_LEVEL"),
		InputDir:       os.Getenv("GFMRENDER_INPUT_DIR"),
		OutputDir:      os.Getenv("GFMRENDER_OUTPUT_DIR"),
		Addr:           os.Getenv("GFMRENDER_ADDR"),
		AssetsDir:      os.Getenv("GFMRENDER_ASSETS_DIR"),
	}

	if timeout := os.Getenv("GFMRENDER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("GFMRENDER_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized GFMRENDER_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "GFMRENDER_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A value is only applied where the config still holds its default, so a
// config file wins over the environment.
// This ensures: CLI flags > config file > env vars > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	def := config.DefaultConfig()

	setIfDefault(&cfg.Theme, env.Theme, def.Theme)
	setIfDefault(&cfg.Page.Style, env.Style, def.Page.Style)
	setIfDefault(&cfg.Assets.BasePath, env.AssetsDir, def.Assets.BasePath)
	setIfDefault(&cfg.Diagram.Backend, strings.ToLower(env.DiagramBackend), def.Diagram.Backend)
	setIfDefault(&cfg.Log.Level, env.LogLevel, def.Log.Level)
	setIfDefault(&cfg.Input.DefaultDir, env.InputDir, def.Input.DefaultDir)
	setIfDefault(&cfg.Output.DefaultDir, env.OutputDir, def.Output.DefaultDir)
	setIfDefault(&cfg.Serve.Addr, env.Addr, def.Serve.Addr)

	if env.Timeout > 0 {
		setIfDefault(&cfg.Browser.Timeout, env.Timeout.String(), def.Browser.Timeout)
	}
	if env.Workers > 0 && cfg.Workers == def.Workers {
		cfg.Workers = env.Workers
	}
}

// setIfDefault sets *dst to value when value is non-empty and *dst still
// equals the default.
func setIfDefault(dst *string, value, def string) {
	if value != "" && *dst == def {
		*dst = value
	}
}
