//go:build integration

package gfmrender

// Notes:
// - Requires Chrome (rod downloads Chromium on first run) and network access
//   to the default CDN scripts.
// - One renderer is shared by all tests in this file and closed in TestMain.

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 60 * time.Second

var testBrowser *BrowserRenderer

func TestMain(m *testing.M) {
	testBrowser = NewBrowserRenderer(BrowserConfig{})
	code := m.Run()
	_ = testBrowser.Close()
	os.Exit(code)
}

func newBrowserEnhancer() *Enhancer {
	return NewEnhancer(WithMathRenderer(testBrowser), WithDiagramRenderer(testBrowser))
}

func TestBrowserRenderer_RenderMath_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	tests := []struct {
		name    string
		opts    MathOptions
		wantSub string
	}{
		{"inline", MathOptions{}, `class="katex"`},
		{"display", MathOptions{DisplayMode: true}, `class="katex-display"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testBrowser.RenderMath(ctx, `\frac{a}{b}`, tt.opts)
			if err != nil {
				t.Fatalf("RenderMath() error = %v", err)
			}
			if !strings.Contains(got, tt.wantSub) {
				t.Errorf("RenderMath() = %.200s, want %q", got, tt.wantSub)
			}
		})
	}
}

func TestBrowserRenderer_RenderMath_InvalidRendersInline_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	// throwOnError false: KaTeX renders the error in red instead of failing.
	got, err := testBrowser.RenderMath(ctx, `\undefinedcommand`, MathOptions{})
	if err != nil {
		t.Fatalf("RenderMath() error = %v", err)
	}
	if !strings.Contains(got, "katex-error") {
		t.Errorf("RenderMath() = %.200s, want katex-error", got)
	}

	// throwOnError true surfaces the failure.
	_, err = testBrowser.RenderMath(ctx, `\undefinedcommand`, MathOptions{ThrowOnError: true})
	if !errors.Is(err, ErrMathRender) {
		t.Errorf("RenderMath() error = %v, want ErrMathRender", err)
	}
}

func TestEnhanceHTML_Browser_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	markup := `<p><code class="code math js-render-math" data-math-style="inline">x^2</code></p>` +
		`<pre class="code highlight js-syntax-highlight language-mermaid" lang="mermaid"><code class="js-render-mermaid">graph TD;
  A--&gt;B;</code></pre>`

	out, report, err := EnhanceHTML(ctx, newBrowserEnhancer(), markup)
	if err != nil {
		t.Fatalf("EnhanceHTML() error = %v", err)
	}
	if report.MathRendered != 1 || report.DiagramsRendered != 1 {
		t.Errorf("report = %+v", report)
	}
	for _, want := range []string{`class="katex"`, `class="mermaid"`, `<text class="source" display="none">graph TD;`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<pre") {
		t.Error("output still contains the diagram <pre>")
	}
}

func TestEnhanceHTML_Browser_InvalidDiagram_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	markup := `<pre><code class="js-render-mermaid">graph ??? !!!</code></pre>`
	_, report, err := EnhanceHTML(ctx, newBrowserEnhancer(), markup)
	if !errors.Is(err, ErrDiagramRender) {
		t.Errorf("EnhanceHTML() error = %v, want ErrDiagramRender", err)
	}
	if report.DiagramsFailed != 1 {
		t.Errorf("DiagramsFailed = %d, want 1", report.DiagramsFailed)
	}
}
