package pipeline

// Notes:
// - InjectCSS is string-based; the tables pin every insertion point.
// - Wrap output is checked by substring rather than exact match so the
//   template whitespace can change without rewriting the tests.

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-gfmrender/internal/assets"
)

// ---------------------------------------------------------------------------
// TestInjectCSS - Style block placement and escaping
// ---------------------------------------------------------------------------

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                             "",
		".dark .k { color: #f92672 }":  ".dark .k { color: #f92672 }",
		"</style>":                     `<\/style>`,
		"</STYLE><script>x</Script>":   `<\/STYLE><script>x<\/Script>`,
		"</</style>":                   `<\/<\/style>`,
		`.md a::after { content: "" }`: `.md a::after { content: "" }`,
	}

	for in, want := range tests {
		if got := sanitizeCSS(in); got != want {
			t.Errorf("sanitizeCSS(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	const css = ".white .k { font-weight: bold }"
	const style = "<style>" + css + "</style>"

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{
			name: "no CSS leaves page alone",
			html: "<html><head></head><body>x</body></html>",
			want: "<html><head></head><body>x</body></html>",
		},
		{
			name: "before closing head",
			html: "<html><head><title>t</title></head><body>x</body></html>",
			css:  css,
			want: "<html><head><title>t</title>" + style + "</head><body>x</body></html>",
		},
		{
			name: "closing head in upper case",
			html: "<HTML><HEAD></HEAD><BODY>x</BODY></HTML>",
			css:  css,
			want: "<HTML><HEAD>" + style + "</HEAD><BODY>x</BODY></HTML>",
		},
		{
			name: "after body open tag when there is no head",
			html: `<body class="md" data-theme="white">x</body>`,
			css:  css,
			want: `<body class="md" data-theme="white">` + style + "x</body>",
		},
		{
			name: "prepended to a fragment",
			html: `<pre class="js-syntax-highlight white">x</pre>`,
			css:  css,
			want: style + `<pre class="js-syntax-highlight white">x</pre>`,
		},
		{
			name: "style breakout escaped",
			html: "<head></head>",
			css:  "</style><script>alert(1)</script>",
			want: `<head><style><\/style><script>alert(1)<\/script></style></head>`,
		},
	}

	injector := &CSSInjection{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injector.InjectCSS(context.Background(), tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("cancelled context leaves page alone", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		const page = "<html><head></head><body>x</body></html>"
		if got := injector.InjectCSS(ctx, page, css); got != page {
			t.Errorf("InjectCSS() = %q, want page unchanged", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestStripHTMLTags - Heading text extraction
// ---------------------------------------------------------------------------

func TestStripHTMLTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"<em>emphasized</em>", "emphasized"},
		{"<strong>bold</strong>", "bold"},
		{"<code>code</code>", "code"},
		{"<a href=\"#\">link</a>", "link"},
		{"<em>Hello</em> World", "Hello World"},
		{"Plain <strong>bold</strong> plain", "Plain bold plain"},
		{"<em><strong>nested</strong></em>", "nested"},
		{"  <em>spaced</em>  ", "spaced"},
		{"", ""},
		{"no tags", "no tags"},
		{"<br/>self closing", "self closing"},
		{"<div class=\"foo\">with attrs</div>", "with attrs"},
		// HTML entity decoding
		{"A &amp; B", "A & B"},
		{"&lt;script&gt;", "<script>"},
		{"&quot;quoted&quot;", "\"quoted\""},
		{"&#39;apostrophe&#39;", "'apostrophe'"},
		{"&lt;em&gt;not a tag&lt;/em&gt;", "<em>not a tag</em>"},
		{"mixed &amp; <em>tags</em> &amp; entities", "mixed & tags & entities"},
		{"&#8212; em dash", "— em dash"},
		{"&copy; 2025", "© 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := stripHTMLTags(tt.input)
			if got != tt.want {
				t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExtractTitle - Page title selection
// ---------------------------------------------------------------------------

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		fallback string
		want     string
	}{
		{
			name:     "empty HTML uses fallback",
			html:     "",
			fallback: "doc",
			want:     "doc",
		},
		{
			name:     "no headings uses fallback",
			html:     "<p>Just a paragraph</p>",
			fallback: "doc",
			want:     "doc",
		},
		{
			name:     "single h1",
			html:     `<h1 id="intro">Introduction</h1>`,
			fallback: "doc",
			want:     "Introduction",
		},
		{
			name:     "highest level wins over order",
			html:     `<h2>Second</h2><h1>First</h1>`,
			fallback: "doc",
			want:     "First",
		},
		{
			name:     "first heading wins on ties",
			html:     `<h2>A</h2><h2>B</h2>`,
			fallback: "doc",
			want:     "A",
		},
		{
			name:     "inline tags are stripped",
			html:     `<h1>Hello <em>World</em></h1>`,
			fallback: "doc",
			want:     "Hello World",
		},
		{
			name:     "entities are decoded",
			html:     `<h1>A &amp; B</h1>`,
			fallback: "doc",
			want:     "A & B",
		},
		{
			name:     "empty heading is skipped",
			html:     `<h1><img src="x.png"/></h1><h3>Real</h3>`,
			fallback: "doc",
			want:     "Real",
		},
		{
			name:     "case insensitive tags",
			html:     `<H1>Upper</H1>`,
			fallback: "doc",
			want:     "Upper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractTitle(tt.html, tt.fallback)
			if got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPageWrapper - Standalone page shell
// ---------------------------------------------------------------------------

// newTestWrapper parses the built-in page template.
func newTestWrapper(t *testing.T) *PageWrapper {
	t.Helper()
	text, err := assets.NewEmbeddedLoader().LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	w, err := NewPageWrapper(text)
	if err != nil {
		t.Fatalf("NewPageWrapper() error = %v", err)
	}
	return w
}

func TestPageWrapper(t *testing.T) {
	t.Parallel()

	w := newTestWrapper(t)

	t.Run("wraps body with title and stylesheets", func(t *testing.T) {
		t.Parallel()

		got, err := w.Wrap(context.Background(), "<p>Hi</p>", Page{
			Title:       "Notes",
			Stylesheets: []string{"https://cdn.example.com/katex.min.css"},
		})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}

		wants := []string{
			"<!DOCTYPE html>",
			"<title>Notes</title>",
			`<link rel="stylesheet" href="https://cdn.example.com/katex.min.css">`,
			"<p>Hi</p>",
		}
		for _, want := range wants {
			if !strings.Contains(got, want) {
				t.Errorf("Wrap() missing %q in:\n%s", want, got)
			}
		}
	})

	t.Run("escapes title", func(t *testing.T) {
		t.Parallel()

		got, err := w.Wrap(context.Background(), "", Page{Title: "<script>x</script>"})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}
		if strings.Contains(got, "<script>x</script>") {
			t.Errorf("title not escaped:\n%s", got)
		}
		if !strings.Contains(got, "&lt;script&gt;") {
			t.Errorf("expected escaped title in:\n%s", got)
		}
	})

	t.Run("body is not escaped", func(t *testing.T) {
		t.Parallel()

		body := `<pre class="code highlight js-syntax-highlight"><code>x</code></pre>`
		got, err := w.Wrap(context.Background(), body, Page{Title: "t"})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}
		if !strings.Contains(got, body) {
			t.Errorf("body altered:\n%s", got)
		}
	})

	t.Run("css injected in head", func(t *testing.T) {
		t.Parallel()

		got, err := w.Wrap(context.Background(), "<p>x</p>", Page{Title: "t", CSS: ".white { color: #000; }"})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}
		style := strings.Index(got, "<style>.white { color: #000; }</style>")
		head := strings.Index(got, "</head>")
		if style == -1 || head == -1 || style > head {
			t.Errorf("style block not before </head>:\n%s", got)
		}
	})

	t.Run("date footer only when set", func(t *testing.T) {
		t.Parallel()

		got, err := w.Wrap(context.Background(), "<p>x</p>", Page{Title: "t", Date: "March 15, 2024"})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}
		if !strings.Contains(got, "<time>March 15, 2024</time>") {
			t.Errorf("date missing:\n%s", got)
		}

		got, err = w.Wrap(context.Background(), "<p>x</p>", Page{Title: "t"})
		if err != nil {
			t.Fatalf("Wrap() error = %v", err)
		}
		if strings.Contains(got, "<footer") {
			t.Errorf("unexpected footer without a date:\n%s", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := w.Wrap(ctx, "<p>x</p>", Page{Title: "t"}); !errors.Is(err, context.Canceled) {
			t.Errorf("Wrap() error = %v, want context.Canceled", err)
		}
	})
}

func TestNewPageWrapper_InvalidTemplate(t *testing.T) {
	t.Parallel()

	if _, err := NewPageWrapper("<title>{{.Title</title>"); !errors.Is(err, ErrPageTemplate) {
		t.Errorf("NewPageWrapper() error = %v, want ErrPageTemplate", err)
	}
}

func TestPageWrapper_CustomTemplate(t *testing.T) {
	t.Parallel()

	w, err := NewPageWrapper("<html><head></head><main>{{.Body}}</main></html>")
	if err != nil {
		t.Fatal(err)
	}
	got, err := w.Wrap(context.Background(), "<p>x</p>", Page{Title: "t", CSS: ".a{}"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "<html><head><style>.a{}</style></head><main><p>x</p></main></html>" {
		t.Errorf("Wrap() = %q", got)
	}
}
