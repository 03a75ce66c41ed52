package main

import (
	"errors"
	"fmt"
	"os"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/assets"
	"github.com/alnah/go-gfmrender/internal/config"
	"github.com/alnah/go-gfmrender/internal/pipeline"
)

// Exit codes for the gfmrender CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser or diagram CLI unavailable
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// usageError wraps a flag parsing error so it maps to ExitUsage.
func usageError(err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Renderer backend errors (exit 4)
	if errors.Is(err, gfmrender.ErrBrowserConnect) ||
		errors.Is(err, gfmrender.ErrPageCreate) ||
		errors.Is(err, gfmrender.ErrScriptLoad) ||
		errors.Is(err, gfmrender.ErrCommandNotFound) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, gfmrender.ErrUnknownTheme) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) ||
		errors.Is(err, pipeline.ErrPageTemplate) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrNoOutput) {
		return ExitUsage
	}

	return ExitGeneral
}
