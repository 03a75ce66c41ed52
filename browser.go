package gfmrender

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/process"
)

// Default script locations for the browser-side renderers.
const (
	DefaultKaTeXScript   = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"
	DefaultKaTeXCSS      = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css"
	DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10.9.1/dist/mermaid.min.js"
)

// defaultTimeout bounds each browser call when the context has no deadline.
const defaultTimeout = 30 * time.Second

// JavaScript evaluated in the page. Arguments are passed by rod, never
// interpolated.
const (
	jsKaTeXRender = `(src, display, throwOnError) =>
		katex.renderToString(src, { displayMode: display, throwOnError: throwOnError })`
	jsMermaidInit = `(theme, startOnLoad) =>
		mermaid.initialize({ startOnLoad: startOnLoad, theme: theme })`
	jsMermaidRender = `async (id, src) => {
		const { svg } = await mermaid.render(id, src);
		return svg;
	}`
)

// BrowserConfig configures a BrowserRenderer.
type BrowserConfig struct {
	// KaTeXScript and MermaidScript are URLs or local file paths.
	KaTeXScript   string
	MermaidScript string
	// Timeout bounds each call when ctx has no deadline. Zero means 30s.
	Timeout time.Duration
}

// BrowserRenderer runs KaTeX and mermaid inside headless Chrome via go-rod.
// One blank page hosts both libraries; calls on it are serialized.
// Rod downloads Chromium on first run if no browser is found.
type BrowserRenderer struct {
	cfg BrowserConfig

	mu             sync.Mutex
	launcher       *launcher.Launcher
	browser        *rod.Browser
	page           *rod.Page
	katexLoaded    bool
	mermaidLoaded  bool
	mermaidStarted bool
}

// Compile-time interface checks.
var (
	_ MathRenderer    = (*BrowserRenderer)(nil)
	_ DiagramRenderer = (*BrowserRenderer)(nil)
)

// NewBrowserRenderer creates a BrowserRenderer. The browser starts lazily on
// the first call.
func NewBrowserRenderer(cfg BrowserConfig) *BrowserRenderer {
	if cfg.KaTeXScript == "" {
		cfg.KaTeXScript = DefaultKaTeXScript
	}
	if cfg.MermaidScript == "" {
		cfg.MermaidScript = DefaultMermaidScript
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &BrowserRenderer{cfg: cfg}
}

// Initialize loads mermaid and applies the process-wide settings.
func (r *BrowserRenderer) Initialize(ctx context.Context, settings DiagramSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureMermaid(ctx); err != nil {
		return err
	}

	page, done := r.scoped(ctx)
	defer done()
	if _, err := page.Eval(jsMermaidInit, settings.Theme, settings.StartOnLoad); err != nil {
		return fmt.Errorf("%w: mermaid.initialize: %v", ErrInitialize, err)
	}
	r.mermaidStarted = true
	return nil
}

// RenderMath returns KaTeX markup for source.
func (r *BrowserRenderer) RenderMath(ctx context.Context, source string, opts MathOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureKaTeX(ctx); err != nil {
		return "", err
	}

	page, done := r.scoped(ctx)
	defer done()
	res, err := page.Eval(jsKaTeXRender, source, opts.DisplayMode, opts.ThrowOnError)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMathRender, err)
	}
	return res.Value.Str(), nil
}

// RenderDiagram returns the SVG markup mermaid produces for source.
func (r *BrowserRenderer) RenderDiagram(ctx context.Context, id, source string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureMermaid(ctx); err != nil {
		return "", err
	}
	if !r.mermaidStarted {
		return "", fmt.Errorf("%w: mermaid used before Initialize", ErrDiagramRender)
	}

	page, done := r.scoped(ctx)
	defer done()
	res, err := page.Eval(jsMermaidRender, id, source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	return res.Value.Str(), nil
}

// Close releases the page, the browser and the Chrome process group.
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.page != nil {
		_ = r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	r.katexLoaded = false
	r.mermaidLoaded = false
	r.mermaidStarted = false
	return err
}

// scoped returns the page bound to ctx, with the configured timeout when ctx
// has no deadline, and a release function.
func (r *BrowserRenderer) scoped(ctx context.Context) (*rod.Page, func()) {
	page := r.page.Context(ctx)
	if _, ok := ctx.Deadline(); ok {
		return page, func() {}
	}
	page = page.Timeout(r.cfg.Timeout)
	return page, func() { page.CancelTimeout() }
}

func (r *BrowserRenderer) ensureKaTeX(ctx context.Context) error {
	if err := r.ensurePage(ctx); err != nil {
		return err
	}
	if r.katexLoaded {
		return nil
	}
	if err := r.loadScript(ctx, r.cfg.KaTeXScript); err != nil {
		return err
	}
	r.katexLoaded = true
	return nil
}

func (r *BrowserRenderer) ensureMermaid(ctx context.Context) error {
	if err := r.ensurePage(ctx); err != nil {
		return err
	}
	if r.mermaidLoaded {
		return nil
	}
	if err := r.loadScript(ctx, r.cfg.MermaidScript); err != nil {
		return err
	}
	r.mermaidLoaded = true
	return nil
}

// loadScript injects a script tag from a URL or the contents of a local file.
func (r *BrowserRenderer) loadScript(ctx context.Context, ref string) error {
	page, done := r.scoped(ctx)
	defer done()

	if fileutil.IsURL(ref) {
		if err := page.AddScriptTag(ref, ""); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrScriptLoad, ref, err)
		}
		return nil
	}

	content, err := os.ReadFile(ref) // #nosec G304 -- script path is user-configured
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptLoad, err)
	}
	if err := page.AddScriptTag("", string(content)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptLoad, ref, err)
	}
	return nil
}

// ensurePage lazily launches the browser and opens the host page.
func (r *BrowserRenderer) ensurePage(ctx context.Context) error {
	if r.page != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.browser == nil {
		l := launcher.New()

		// Use pre-installed browser if specified (Docker/containerized environments)
		if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
			l = l.Bin(bin)
		}

		// NoSandbox required for CI and containerized environments
		if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
			l = l.NoSandbox(true)
		}

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		r.launcher = l

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			l.Kill()
			r.launcher = nil
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		r.browser = browser
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	r.page = page
	return nil
}
