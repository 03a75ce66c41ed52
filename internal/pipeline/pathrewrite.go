package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-gfmrender/internal/dom"
	"github.com/alnah/go-gfmrender/internal/fileutil"
)

// RebasePaths rewrites relative image and link paths written against
// sourceDir so they still resolve from a page written to outputDir.
// With an empty outputDir the page has no home (stdout), and paths become
// absolute file:// URLs. Links to Markdown files are pointed at their
// rendered .html sibling. If sourceDir is empty, returns the HTML unchanged.
//
// Rewrites:
//   - img[src]
//   - a[href] (not anchors, not URLs)
//
// Paths escaping sourceDir, absolute paths and URLs are left as written.
func RebasePaths(htmlContent, sourceDir, outputDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	absOutputDir := ""
	if outputDir != "" {
		if absOutputDir, err = filepath.Abs(outputDir); err != nil {
			return "", err
		}
	}

	doc, isFragment, err := dom.Parse(htmlContent)
	if err != nil {
		return "", err
	}

	r := rebaser{sourceDir: absSourceDir, outputDir: absOutputDir}
	r.walk(doc)

	return dom.Render(doc, isFragment)
}

type rebaser struct {
	sourceDir string
	outputDir string
}

func (r rebaser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			r.rewriteAttr(n, "src", false)
		case atom.A:
			r.rewriteAttr(n, "href", true)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

// rewriteAttr rewrites a single attribute if it holds a relative path.
func (r rebaser) rewriteAttr(n *html.Node, attrName string, isLink bool) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		target, fragment := attr.Val, ""
		if isLink {
			target, fragment, _ = strings.Cut(target, "#")
			if fileutil.HasExt(target, ".md", ".markdown") {
				target = fileutil.ReplaceExt(target, ".html")
			}
		}

		absPath := filepath.Join(r.sourceDir, filepath.FromSlash(target))
		if !isPathUnderDir(absPath, r.sourceDir) {
			continue
		}

		var rewritten string
		if r.outputDir == "" {
			rewritten = pathToFileURL(absPath)
		} else {
			rel, err := filepath.Rel(r.outputDir, absPath)
			if err != nil {
				continue
			}
			rewritten = filepath.ToSlash(rel)
		}
		if fragment != "" {
			rewritten += "#" + fragment
		}
		n.Attr[i].Val = rewritten
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// Skip URLs (http, https, file, data, mailto, protocol-relative)
	if strings.HasPrefix(path, "//") || fileutil.IsURL(path) {
		return false
	}
	for _, scheme := range []string{"file:", "data:", "mailto:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}

	if strings.HasPrefix(path, "#") {
		return false
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	return true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
