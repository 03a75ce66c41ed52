package main

import (
	"context"
	"io"
	"log/slog"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/config"
)

// EnhancerPool abstracts pool operations for testability.
type EnhancerPool interface {
	Acquire(ctx context.Context) (*gfmrender.Enhancer, error)
	Release(e *gfmrender.Enhancer)
	Size() int
	Close() error
}

// Compile-time check that gfmrender.Pool implements EnhancerPool.
var _ EnhancerPool = (*gfmrender.Pool)(nil)

// PoolFactory builds the enhancer pool for a resolved configuration.
type PoolFactory func(size int, cfg *config.Config, logger *slog.Logger, rec gfmrender.Recorder) (EnhancerPool, error)

// newEnhancerPool builds a pool whose enhancers each own a headless browser
// for math (and diagrams, with the browser backend). With the mmdc backend,
// diagrams go through the mermaid CLI instead. The browser is only launched
// if a pass needs it.
func newEnhancerPool(size int, cfg *config.Config, logger *slog.Logger, rec gfmrender.Recorder) (EnhancerPool, error) {
	opts, err := enhancerOptions(cfg, logger, rec)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.BrowserTimeout()
	if err != nil {
		return nil, err
	}
	browserCfg := gfmrender.BrowserConfig{
		KaTeXScript:   cfg.Browser.KaTeXScript,
		MermaidScript: cfg.Browser.MermaidScript,
		Timeout:       timeout,
	}

	return gfmrender.NewPool(size, func() (*gfmrender.Enhancer, io.Closer) {
		var closer io.Closer
		var browser *gfmrender.BrowserRenderer
		useBrowser := func() *gfmrender.BrowserRenderer {
			if browser == nil {
				browser = gfmrender.NewBrowserRenderer(browserCfg)
				closer = browser
			}
			return browser
		}

		all := append([]gfmrender.Option(nil), opts...)
		if !cfg.Math.Disabled {
			all = append(all, gfmrender.WithMathRenderer(useBrowser()))
		}
		if !cfg.Diagram.Disabled {
			if cfg.Diagram.Backend == config.BackendCommand {
				all = append(all, gfmrender.WithDiagramRenderer(gfmrender.NewCommandRenderer(cfg.Diagram.Command)))
			} else {
				all = append(all, gfmrender.WithDiagramRenderer(useBrowser()))
			}
		}
		return gfmrender.NewEnhancer(all...), closer
	}), nil
}

// enhancerOptions maps the configuration onto enhancer options. The theme
// is resolved here so an unknown name fails before any browser starts.
func enhancerOptions(cfg *config.Config, logger *slog.Logger, rec gfmrender.Recorder) ([]gfmrender.Option, error) {
	if _, err := gfmrender.ResolveTheme(cfg.Theme); err != nil {
		return nil, err
	}

	opts := []gfmrender.Option{
		gfmrender.WithLogger(logger),
	}
	if cfg.Theme != "" {
		opts = append(opts, gfmrender.WithTheme(cfg.Theme))
	}
	if cfg.Diagram.Theme != "" {
		opts = append(opts, gfmrender.WithDiagramTheme(cfg.Diagram.Theme))
	}
	if cfg.Diagram.Concurrency > 0 {
		opts = append(opts, gfmrender.WithDiagramConcurrency(cfg.Diagram.Concurrency))
	}
	if rec != nil {
		opts = append(opts, gfmrender.WithRecorder(rec))
	}
	return opts, nil
}
