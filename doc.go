// Package gfmrender post-processes rendered GitLab-flavored markup: it styles
// highlighted code, typesets math and renders diagrams inside an HTML tree.
//
// # Quick Start
//
// Create an enhancer with renderers, enhance a subtree, and wait for the
// asynchronous diagram renders before reading the tree:
//
//	browser := gfmrender.NewBrowserRenderer(gfmrender.BrowserConfig{})
//	defer browser.Close()
//
//	e := gfmrender.NewEnhancer(
//	    gfmrender.WithTheme("dark"),
//	    gfmrender.WithMathRenderer(browser),
//	    gfmrender.WithDiagramRenderer(browser),
//	)
//	if err := e.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	pass := e.Enhance(ctx, root)
//	if err := pass.Wait(ctx); err != nil {
//	    log.Printf("some diagrams failed: %v", err)
//	}
//
// For a string round trip use EnhanceHTML, which parses, enhances, waits and
// renders back.
//
// # Markers
//
// Elements are selected by class token:
//
//   - js-syntax-highlight: the theme class is added.
//   - js-render-math: the text is typeset and the element replaced by a
//     <span>. data-math-style="display" selects block mode.
//   - js-render-mermaid: the text is rendered to SVG, which replaces the
//     enclosing <pre> and keeps the source in a hidden <text class="source">.
//
// Passes run in that order. Math failures are logged and leave the element
// as is. Diagram failures are logged and returned from Pass.Wait.
//
// # Renderers
//
// MathRenderer and DiagramRenderer are black boxes. BrowserRenderer runs
// KaTeX and mermaid in headless Chrome; CommandRenderer runs the mermaid CLI.
// A nil renderer disables its pass.
//
// # Parallel Processing
//
// For batch work, use Pool to manage multiple browser-backed enhancers:
//
//	pool := gfmrender.NewBrowserPool(4, gfmrender.BrowserConfig{})
//	defer pool.Close()
//
//	e, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(e)
//	out, report, err := gfmrender.EnhanceHTML(ctx, e, markup)
//
// # Browser Requirements
//
// BrowserRenderer requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package gfmrender
