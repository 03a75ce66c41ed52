package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Page template errors.
var (
	ErrPageTemplate = errors.New("invalid page template")
	ErrPageRender   = errors.New("page template rendering failed")
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		// Find the closing > of <body...>
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// PageWrapper wraps rendered fragments in a standalone page. The template
// receives .Title, .Date, .Stylesheets and .Body; Body is trusted, it comes
// out of the converter and the enhancer.
type PageWrapper struct {
	tmpl *template.Template
}

// NewPageWrapper parses a page template.
func NewPageWrapper(text string) (*PageWrapper, error) {
	tmpl, err := template.New("page").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageTemplate, err)
	}
	return &PageWrapper{tmpl: tmpl}, nil
}

// Page describes what surrounds a rendered body.
type Page struct {
	Title       string
	Date        string   // Empty = no date
	CSS         string   // Inlined in a <style> block
	Stylesheets []string // Linked with <link rel="stylesheet">
}

// pageData feeds the page template.
type pageData struct {
	Title       string
	Date        string
	Stylesheets []string
	Body        template.HTML
}

// Wrap renders body into the page. Title and date are escaped, each
// stylesheet becomes a <link>, and CSS is injected inline.
func (w *PageWrapper) Wrap(ctx context.Context, body string, page Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err := w.tmpl.Execute(&buf, pageData{
		Title:       page.Title,
		Date:        page.Date,
		Stylesheets: page.Stylesheets,
		Body:        template.HTML(body), //nolint:gosec // body is converter output
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	injector := &CSSInjection{}
	return injector.InjectCSS(ctx, buf.String(), page.CSS), nil
}

// headingPattern matches h1-h6 tags.
// Captures: 1=level, 2=inner HTML (may contain inline tags)
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes HTML tags from a string, decodes HTML entities,
// and trims whitespace. Decoding avoids double-encoding when the text is
// escaped again by the page template.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// ExtractTitle returns the text of the highest-level heading in htmlContent,
// the first one on ties. Returns fallback when there is none.
func ExtractTitle(htmlContent, fallback string) string {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)

	best, title := 7, ""
	for _, m := range matches {
		level := int(m[1][0] - '0')
		if level >= best {
			continue
		}
		if text := stripHTMLTags(m[2]); text != "" {
			best, title = level, text
		}
	}
	if title == "" {
		return fallback
	}
	return title
}
