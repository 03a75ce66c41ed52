package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Fenced code languages with dedicated markup.
const (
	LangMath    = "math"
	LangMermaid = "mermaid"
	// langPlain labels blocks without an info string.
	langPlain = "plaintext"
)

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to marked HTML fragments using goldmark
// (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions, syntax
// highlighting and inline math.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),           // Classes only; the theme stylesheet colors them
					chromahtml.PreventSurroundingPre(true), // The wrapper writes the <pre>
				),
				highlighting.WithWrapperRenderer(wrapCodeBlock),
			),
			InlineMath,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(), // Self-closing tags
			// Note: WithUnsafe() intentionally NOT used: raw HTML in
			// Markdown is dropped.
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// wrapCodeBlock writes the <pre><code> pair around a fenced block:
//
//	math:    <pre class="code math js-render-math" lang="math" data-math-style="display"><code>
//	mermaid: <pre class="code highlight js-syntax-highlight language-mermaid" lang="mermaid"><code class="js-render-mermaid">
//	other:   <pre class="code highlight js-syntax-highlight language-X" lang="X"><code>
func wrapCodeBlock(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}

	lang := langPlain
	if l, ok := ctx.Language(); ok && len(l) > 0 {
		lang = string(util.EscapeHTML(l))
	}

	switch lang {
	case LangMath:
		_, _ = w.WriteString(`<pre class="code math js-render-math" lang="math" data-math-style="display"><code>`)
	case LangMermaid:
		_, _ = w.WriteString(`<pre class="code highlight js-syntax-highlight language-mermaid" lang="mermaid"><code class="js-render-mermaid">`)
	default:
		_, _ = fmt.Fprintf(w, `<pre class="code highlight js-syntax-highlight language-%s" lang="%s"><code>`, lang, lang)
	}
}
