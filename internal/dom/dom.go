// Package dom provides the small set of DOM operations the enhancer needs on
// top of golang.org/x/net/html: parsing documents and fragments, class-token
// queries, text content access, ancestor lookup, and in-place replacement.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses HTML content, handling both full documents and fragments.
// Fragments are parsed in a <body> context and wrapped in a DocumentNode so
// callers can traverse both shapes uniformly. The returned bool reports
// whether the input was a fragment.
func Parse(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	nodes, err := html.ParseFragment(strings.NewReader(content), bodyContext())
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// ParseFragment parses markup as children of a detached <body>.
func ParseFragment(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), bodyContext())
}

// Render renders the tree back to a string.
// For fragments, only the children are rendered (no <html><body> wrapper).
func Render(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Body returns the <body> element of a parsed document, or doc itself when
// there is none (fragments).
func Body(doc *html.Node) *html.Node {
	if b := FindElement(doc, atom.Body); b != nil {
		return b
	}
	return doc
}

// FindElement returns the first element with the given atom in document order.
func FindElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func bodyContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
}
