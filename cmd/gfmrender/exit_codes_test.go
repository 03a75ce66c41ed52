package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/assets"
	"github.com/alnah/go-gfmrender/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error classification
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown", errors.New("boom"), ExitGeneral},
		{"diagram render", fmt.Errorf("page: %w", gfmrender.ErrDiagramRender), ExitGeneral},

		{"browser connect", fmt.Errorf("x: %w", gfmrender.ErrBrowserConnect), ExitBrowser},
		{"page create", gfmrender.ErrPageCreate, ExitBrowser},
		{"script load", gfmrender.ErrScriptLoad, ExitBrowser},
		{"command not found", gfmrender.ErrCommandNotFound, ExitBrowser},

		{"not exist", fmt.Errorf("stat: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},

		{"usage", usageError(errors.New("unknown flag")), ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"unknown theme", gfmrender.ErrUnknownTheme, ExitUsage},
		{"extension", ErrInvalidExtension, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"no output", ErrNoOutput, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"assets base path", assets.ErrInvalidBasePath, ExitUsage},
		{"asset read", assets.ErrAssetRead, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
