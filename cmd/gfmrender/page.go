package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/assets"
	"github.com/alnah/go-gfmrender/internal/config"
	"github.com/alnah/go-gfmrender/internal/dateutil"
	"github.com/alnah/go-gfmrender/internal/pipeline"
	"github.com/alnah/go-gfmrender/internal/server"
)

// pageBuilder turns Markdown into a standalone enhanced page:
// preprocess, convert to marked HTML, enhance, rebase paths, wrap.
type pageBuilder struct {
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	wrapper      *pipeline.PageWrapper
	theme        string   // Highlight theme stylesheet
	css          string   // Page style and theme, inlined
	stylesheets  []string // Linked stylesheets (KaTeX)
	date         string   // Footer date, resolved once per run
}

// newPageBuilder resolves the page assets, the theme stylesheet, the
// linked stylesheets and the footer date for cfg. An "auto" date is
// taken from now.
func newPageBuilder(cfg *config.Config, now time.Time) (*pageBuilder, error) {
	theme, err := themeCSS(cfg.Theme)
	if err != nil {
		return nil, err
	}
	date, err := dateutil.ResolveDate(cfg.Page.Date, now)
	if err != nil {
		return nil, fmt.Errorf("%w: page.date: %v", config.ErrInvalidValue, err)
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	style, err := resolver.LoadStyle(orDefault(cfg.Page.Style, assets.DefaultStyleName))
	if err != nil {
		return nil, err
	}
	tmpl, err := resolver.LoadTemplate(orDefault(cfg.Page.Template, assets.DefaultTemplateName))
	if err != nil {
		return nil, err
	}
	wrapper, err := pipeline.NewPageWrapper(tmpl)
	if err != nil {
		return nil, err
	}

	var stylesheets []string
	if !cfg.Math.Disabled {
		katexCSS := cfg.Browser.KaTeXCSS
		if katexCSS == "" {
			katexCSS = gfmrender.DefaultKaTeXCSS
		}
		stylesheets = append(stylesheets, katexCSS)
	}

	return &pageBuilder{
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
		wrapper:      wrapper,
		theme:        theme,
		css:          strings.TrimSpace(style + "\n" + theme),
		stylesheets:  stylesheets,
		date:         date,
	}, nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// build renders markdown read from sourcePath into a page that will live in
// outputDir (empty for stdout). Diagram failures are returned with the page.
func (b *pageBuilder) build(ctx context.Context, e *gfmrender.Enhancer, markdown, sourcePath, outputDir string) (string, gfmrender.Report, error) {
	markdown = b.preprocessor.PreprocessMarkdown(ctx, markdown)

	fragment, err := b.converter.ToHTML(ctx, markdown)
	if err != nil {
		return "", gfmrender.Report{}, err
	}

	enhanced, report, enhanceErr := gfmrender.EnhanceHTML(ctx, e, fragment)
	if enhanced == "" && enhanceErr != nil {
		return "", report, enhanceErr
	}

	rebased, err := pipeline.RebasePaths(enhanced, filepath.Dir(sourcePath), outputDir)
	if err != nil {
		return "", report, fmt.Errorf("rebasing paths: %w", err)
	}

	fallback := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	title := pipeline.ExtractTitle(rebased, fallback)

	page, err := b.wrapper.Wrap(ctx, rebased, pipeline.Page{
		Title:       title,
		Date:        b.date,
		CSS:         b.css,
		Stylesheets: b.stylesheets,
	})
	if err != nil {
		return "", report, err
	}
	return page, report, enhanceErr
}

// poolPageRenderer serves pages from the enhancer pool. Pages are rendered
// for the directory of their source, as the preview server serves them.
type poolPageRenderer struct {
	pool    EnhancerPool
	builder *pageBuilder
}

var _ server.PageRenderer = (*poolPageRenderer)(nil)

// RenderPage renders the Markdown file at path. A page whose only problem
// is failed diagrams is still served: they show as source.
func (r *poolPageRenderer) RenderPage(ctx context.Context, path string) (string, error) {
	markdown, err := readInput(path)
	if err != nil {
		return "", err
	}

	e, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEnhancer, err)
	}
	defer r.pool.Release(e)

	page, _, err := r.builder.build(ctx, e, markdown, path, filepath.Dir(path))
	if page != "" {
		return page, nil
	}
	return "", err
}

// themeCSS resolves a theme name to its stylesheet.
func themeCSS(name string) (string, error) {
	theme, err := gfmrender.ResolveTheme(name)
	if err != nil {
		return "", err
	}
	return theme.CSS()
}
