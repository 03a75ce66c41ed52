package main

import (
	"context"
	"fmt"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/fileutil"
)

// runEnhance enhances HTML that already carries the rendering markers.
// A single file goes to stdout unless -o names a file; a directory needs -o.
// "-" as input reads stdin.
func runEnhance(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCommandFlags("enhance", args, groupRenderer|groupOutput, printEnhanceUsage, env.Stderr)
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
	output := resolveOutputDir(flags.output, cfg)

	var files []fileJob
	var job jobFunc = enhanceJob
	switch {
	case inputPath == stdoutPath:
		out := ""
		if output != stdoutPath {
			out = output
		}
		files = []fileJob{{InputPath: "<stdin>", OutputPath: out}}
		job = stdinJob(env)
	case fileutil.DirExists(inputPath):
		if output == "" {
			return fmt.Errorf("%w: enhancing a directory needs -o <dir>", ErrNoOutput)
		}
		files, err = discoverFiles(inputPath, output, htmlExts, ".html")
	default:
		if output == "" {
			output = stdoutPath
		}
		files, err = discoverFiles(inputPath, output, htmlExts, ".html")
	}
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no HTML files found in %s", ErrNoInput, inputPath)
	}

	// Validates the theme before any browser starts
	pool, err := env.NewPool(min(gfmrender.ResolvePoolSize(cfg.Workers), len(files)), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	results := runBatch(ctx, pool, files, job, env.Stdout)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	return batchError(results, failed)
}

// enhanceJob enhances one HTML file.
func enhanceJob(ctx context.Context, e *gfmrender.Enhancer, job fileJob) (string, gfmrender.Report, error) {
	markup, err := readInput(job.InputPath)
	if err != nil {
		return "", gfmrender.Report{}, err
	}
	return gfmrender.EnhanceHTML(ctx, e, markup)
}

// stdinJob enhances the markup read from env.Stdin.
func stdinJob(env *Environment) jobFunc {
	return func(ctx context.Context, e *gfmrender.Enhancer, _ fileJob) (string, gfmrender.Report, error) {
		markup, err := readAll(env.Stdin)
		if err != nil {
			return "", gfmrender.Report{}, err
		}
		return gfmrender.EnhanceHTML(ctx, e, markup)
	}
}
