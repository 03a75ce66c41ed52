package main

// Notes:
// - Shared fixtures for the command tests. The pool factory builds real
//   gfmrender.Pool instances whose enhancers use in-memory renderers, so
//   commands run end to end without a browser.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - In-memory renderers
// ---------------------------------------------------------------------------

type stubMath struct{}

func (stubMath) RenderMath(_ context.Context, source string, opts gfmrender.MathOptions) (string, error) {
	if source == "fail" {
		return "", errors.New("parse error")
	}
	return fmt.Sprintf(`<span class="katex" data-display="%t">%s</span>`, opts.DisplayMode, source), nil
}

type stubDiagram struct{}

func (stubDiagram) Initialize(context.Context, gfmrender.DiagramSettings) error { return nil }

func (stubDiagram) RenderDiagram(_ context.Context, id, source string) (string, error) {
	if strings.Contains(source, "broken") {
		return "", errors.New("syntax error in graph")
	}
	return fmt.Sprintf(`<svg id="%s"><g>%d</g></svg>`, id, len(source)), nil
}

// stubPoolFactory returns a PoolFactory building stub-backed pools and
// counts the pools it built.
func stubPoolFactory(built *atomic.Int32) PoolFactory {
	return func(size int, cfg *config.Config, logger *slog.Logger, rec gfmrender.Recorder) (EnhancerPool, error) {
		opts, err := enhancerOptions(cfg, logger, rec)
		if err != nil {
			return nil, err
		}
		if built != nil {
			built.Add(1)
		}
		return gfmrender.NewPool(size, func() (*gfmrender.Enhancer, io.Closer) {
			all := append([]gfmrender.Option(nil), opts...)
			if !cfg.Math.Disabled {
				all = append(all, gfmrender.WithMathRenderer(stubMath{}))
			}
			if !cfg.Diagram.Disabled {
				all = append(all, gfmrender.WithDiagramRenderer(stubDiagram{}))
			}
			return gfmrender.NewEnhancer(all...), nil
		}), nil
	}
}

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Environment{
		Now:     func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdin:   strings.NewReader(""),
		Stdout:  stdout,
		Stderr:  stderr,
		Config:  config.DefaultConfig(),
		NewPool: stubPoolFactory(nil),
	}, stdout, stderr
}

// writeFile creates path below dir with content, making parent directories.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// sampleMarkdown exercises every marker.
const sampleMarkdown = "# Release Notes\n\n" +
	"Energy is $`E=mc^2`$.\n\n" +
	"```go\nfunc main() {}\n```\n\n" +
	"```math\na^2+b^2=c^2\n```\n\n" +
	"```mermaid\ngraph TD; A-->B\n```\n\n" +
	"See [the guide](guide.md).\n"
