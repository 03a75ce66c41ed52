package main

// Notes:
// - css and config print to stdout; we check the content, and for config
//   that the dump loads back as a config file.

import (
	"path/filepath"
	"strings"
	"testing"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunCSS - Theme stylesheet
// ---------------------------------------------------------------------------

func TestRunCSS(t *testing.T) {
	t.Parallel()

	t.Run("theme stylesheet", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		if code := runMain([]string{"gfmrender", "css", "--theme", "monokai"}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if !strings.Contains(stdout.String(), ".monokai") {
			t.Errorf("stylesheet should be scoped to .monokai, got %q", stdout.String())
		}
		if strings.Contains(stdout.String(), ".chroma") {
			t.Error("stylesheet should not reference .chroma")
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		if code := runMain([]string{"gfmrender", "css", "--list"}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		names := strings.Fields(stdout.String())
		if len(names) != len(gfmrender.ThemeNames()) {
			t.Errorf("listed %d themes, want %d", len(names), len(gfmrender.ThemeNames()))
		}
	})

	t.Run("none prints nothing", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		if code := runMain([]string{"gfmrender", "css", "--theme", gfmrender.ThemeNone}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunConfig - Effective configuration dump
// ---------------------------------------------------------------------------

func TestRunConfig(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	code := runMain([]string{"gfmrender", "config", "--theme", "dracula", "-w", "2", "--addr", ":9000", "--no-math"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}

	if !strings.HasPrefix(stdout.String(), "#") {
		t.Errorf("dump should start with a comment header, got %q", stdout.String())
	}

	path := writeFile(t, t.TempDir(), "dumped.yaml", stdout.String())
	cfg, err := config.LoadConfig(filepath.Clean(path))
	if err != nil {
		t.Fatalf("dump does not load back: %v\n%s", err, stdout.String())
	}
	if cfg.Theme != "dracula" || cfg.Workers != 2 || cfg.Serve.Addr != ":9000" || !cfg.Math.Disabled {
		t.Errorf("reloaded config = %+v", cfg)
	}
}
