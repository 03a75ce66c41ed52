package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-gfmrender/internal/config"
	"github.com/alnah/go-gfmrender/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoOutput           = errors.New("output required")
	ErrInvalidExtension   = errors.New("unsupported file extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// stdoutPath as -o writes a single result to stdout.
const stdoutPath = "-"

var (
	markdownExts = []string{".md", ".markdown"}
	htmlExts     = []string{".html", ".htm"}
)

// fileJob is a single file to process. An empty OutputPath means stdout.
type fileJob struct {
	InputPath  string
	OutputPath string
}

// resolveInputPath returns the positional input, or the configured default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir returns the -o flag, or the configured default.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// discoverFiles finds the files under inputPath whose extension is in exts
// and pairs each with its output path. Hidden directories are skipped.
func discoverFiles(inputPath, outputDir string, exts []string, outExt string) ([]fileJob, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateExtension(inputPath, exts); err != nil {
			return nil, err
		}
		if outputDir == stdoutPath {
			return []fileJob{{InputPath: inputPath}}, nil
		}
		outPath := resolveOutputPath(inputPath, outputDir, "", outExt)
		return []fileJob{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	if outputDir == stdoutPath {
		return nil, fmt.Errorf("%w: cannot write a directory to stdout", ErrNoOutput)
	}

	var files []fileJob
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if path != inputPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileutil.HasExt(path, exts...) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath, outExt)
		files = append(files, fileJob{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the output path for an input file.
// outputDir may name a file (ending in outExt) for single inputs; relative
// layout below baseInputDir is mirrored into outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir, outExt string) string {
	base := fileutil.ReplaceExt(filepath.Base(inputPath), outExt)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}

	if baseInputDir == "" && fileutil.HasExt(outputDir, outExt) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}

	return filepath.Join(outputDir, base)
}

// validateExtension checks that path has one of exts.
func validateExtension(path string, exts []string) error {
	if !fileutil.HasExt(path, exts...) {
		return fmt.Errorf("%w: got %q, want %s", ErrInvalidExtension, filepath.Ext(path), strings.Join(exts, " or "))
	}
	return nil
}
