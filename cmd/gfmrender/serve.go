package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime"

	"golang.org/x/sync/errgroup"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/metrics"
	"github.com/alnah/go-gfmrender/internal/server"
	"github.com/alnah/go-gfmrender/internal/watcher"
)

// runServe previews a directory of Markdown over HTTP. Pages render on first
// request and re-render after their source changes.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCommandFlags("serve", args, groupRenderer|groupPage|groupServe, printServeUsage, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}
	logger, err := newLogger(flags, cfg, env)
	if err != nil {
		return err
	}

	root := "."
	if len(positional) > 0 || cfg.Input.DefaultDir != "" {
		if root, err = resolveInputPath(positional, cfg); err != nil {
			return err
		}
	}
	if !fileutil.DirExists(root) {
		return fmt.Errorf("%w: %s is not a directory", ErrNoInput, root)
	}
	debounce, err := cfg.ServeDebounce()
	if err != nil {
		return err
	}

	builder, err := newPageBuilder(cfg, env.Now())
	if err != nil {
		return err
	}

	m := metrics.New()
	m.SetBuildInfo(Version, runtime.Version())

	pool, err := env.NewPool(gfmrender.ResolvePoolSize(cfg.Workers), cfg, logger, m)
	if err != nil {
		return err
	}
	defer pool.Close()

	srv, err := server.New(server.Options{
		Root:     root,
		Renderer: &poolPageRenderer{pool: pool, builder: builder},
		ThemeCSS: builder.theme,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	w, err := watcher.New(debounce, logger, watcher.NoHiddenFilter)
	if err != nil {
		return err
	}
	if err := w.AddRecursive(root); err != nil {
		return err
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Serve.Addr, err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s at http://%s (Ctrl-C to stop)\n", root, ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })
	g.Go(func() error { return w.Run(gctx, invalidatePages(srv, m, logger)) })
	return g.Wait()
}

// invalidatePages drops the cached pages of changed Markdown sources.
// Other files (images, stylesheets) are served fresh from disk.
func invalidatePages(srv *server.Server, m *metrics.Metrics, logger *slog.Logger) watcher.Handler {
	return func(_ context.Context, events []watcher.Event) {
		var pages []string
		for _, ev := range events {
			m.IncWatcherEvents()
			if fileutil.HasExt(ev.Path, markdownExts...) {
				pages = append(pages, ev.Path)
			}
			logger.Debug("file changed", "op", ev.Op, "path", ev.Path)
		}
		if len(pages) > 0 {
			srv.Invalidate(pages...)
			logger.Info("pages invalidated", "count", len(pages))
		}
	}
}
