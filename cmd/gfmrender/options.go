package main

import (
	"fmt"
	"log/slog"
	"strings"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/config"
	"github.com/alnah/go-gfmrender/internal/log"
)

// resolveConfig builds the effective configuration:
// defaults < env vars < config file < CLI flags.
func resolveConfig(flags *commandFlags, env *Environment) (*config.Config, error) {
	if err := validateWorkers(flags.renderer.workers); err != nil {
		return nil, err
	}

	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env.Config = cfg
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *commandFlags, cfg *config.Config) {
	r := flags.renderer
	if r.theme != "" {
		cfg.Theme = r.theme
	}
	if r.diagramTheme != "" {
		cfg.Diagram.Theme = r.diagramTheme
	}
	if r.diagramBackend != "" {
		cfg.Diagram.Backend = strings.ToLower(r.diagramBackend)
	}
	if r.diagramCommand != "" {
		cfg.Diagram.Command = r.diagramCommand
	}
	if r.concurrency != 0 {
		cfg.Diagram.Concurrency = r.concurrency
	}
	if r.noMath {
		cfg.Math.Disabled = true
	}
	if r.noDiagrams {
		cfg.Diagram.Disabled = true
	}
	if r.timeout != "" {
		cfg.Browser.Timeout = r.timeout
	}
	if r.workers != 0 {
		cfg.Workers = r.workers
	}

	p := flags.page
	if p.style != "" {
		cfg.Page.Style = p.style
	}
	if p.template != "" {
		cfg.Page.Template = p.template
	}
	if p.assets != "" {
		cfg.Assets.BasePath = p.assets
	}
	if p.date != "" {
		cfg.Page.Date = p.date
	}

	if flags.serve.addr != "" {
		cfg.Serve.Addr = flags.serve.addr
	}
	if flags.serve.debounce != "" {
		cfg.Serve.Debounce = flags.serve.debounce
	}

	c := flags.common
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logJSON {
		cfg.Log.Format = config.LogFormatJSON
	}
}

// newLogger builds the diagnostic logger. --verbose forces debug and
// --quiet keeps errors only; otherwise the configured level applies.
func newLogger(flags *commandFlags, cfg *config.Config, env *Environment) (*slog.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	switch {
	case flags.common.verbose:
		level = slog.LevelDebug
	case flags.common.quiet:
		level = slog.LevelError
	}
	return log.New(log.Options{
		App:    "gfmrender",
		Level:  level,
		JSON:   cfg.Log.Format == config.LogFormatJSON,
		Writer: env.Stderr,
	}), nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > gfmrender.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, gfmrender.MaxPoolSize)
	}
	return nil
}
