package main

import (
	"context"
	"fmt"
	"path/filepath"

	gfmrender "github.com/alnah/go-gfmrender"
)

// runRender converts Markdown files to enhanced standalone pages.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCommandFlags("render", args, groupRenderer|groupPage|groupOutput, printRenderUsage, env.Stderr)
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

	files, err := discoverFiles(inputPath, outputDir, markdownExts, ".html")
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	builder, err := newPageBuilder(cfg, env.Now())
	if err != nil {
		return err
	}

	pool, err := env.NewPool(min(gfmrender.ResolvePoolSize(cfg.Workers), len(files)), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Debug("rendering", "files", len(files), "workers", pool.Size())

	results := runBatch(ctx, pool, files, renderJob(builder), env.Stdout)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	return batchError(results, failed)
}

// renderJob builds the page for one Markdown file.
func renderJob(builder *pageBuilder) jobFunc {
	return func(ctx context.Context, e *gfmrender.Enhancer, job fileJob) (string, gfmrender.Report, error) {
		markdown, err := readInput(job.InputPath)
		if err != nil {
			return "", gfmrender.Report{}, err
		}
		outputDir := ""
		if job.OutputPath != "" {
			outputDir = filepath.Dir(job.OutputPath)
		}
		return builder.build(ctx, e, markdown, job.InputPath, outputDir)
	}
}
