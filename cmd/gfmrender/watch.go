package main

import (
	"context"
	"fmt"
	"path/filepath"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/watcher"
)

// runWatch renders Markdown once, then re-renders each file when it changes
// until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCommandFlags("watch", args, groupRenderer|groupPage|groupOutput|groupServe, printWatchUsage, env.Stderr)
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

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)
	if outputDir == stdoutPath {
		return fmt.Errorf("%w: watch cannot write to stdout", ErrNoOutput)
	}
	debounce, err := cfg.ServeDebounce()
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, outputDir, markdownExts, ".html")
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	builder, err := newPageBuilder(cfg, env.Now())
	if err != nil {
		return err
	}
	pool, err := env.NewPool(gfmrender.ResolvePoolSize(cfg.Workers), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	render := func(ctx context.Context, jobs []fileJob) {
		results := runBatch(ctx, pool, jobs, renderJob(builder), env.Stdout)
		printResults(results, flags.common.quiet, flags.common.verbose, env)
	}
	render(ctx, files)

	singleFile := !fileutil.DirExists(inputPath)
	watchRoot := inputPath
	if singleFile {
		watchRoot = filepath.Dir(inputPath)
	}

	w, err := watcher.New(debounce, logger, watcher.MarkdownFilter, watcher.NoHiddenFilter)
	if err != nil {
		return err
	}
	if err := w.AddRecursive(watchRoot); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl-C to stop)\n", inputPath)
	}

	return w.Run(ctx, func(ctx context.Context, events []watcher.Event) {
		var jobs []fileJob
		for _, ev := range events {
			if ev.Op == watcher.OpRemoved || ev.Op == watcher.OpRenamed {
				logger.Info("source gone, output kept", "path", ev.Path)
				continue
			}
			if singleFile {
				if filepath.Clean(ev.Path) != filepath.Clean(inputPath) {
					continue
				}
				jobs = append(jobs, fileJob{InputPath: ev.Path, OutputPath: resolveOutputPath(ev.Path, outputDir, "", ".html")})
				continue
			}
			jobs = append(jobs, fileJob{InputPath: ev.Path, OutputPath: resolveOutputPath(ev.Path, outputDir, inputPath, ".html")})
		}
		if len(jobs) > 0 {
			render(ctx, jobs)
		}
	})
}
