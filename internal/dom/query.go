package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// QueryAllByClass returns every descendant element of root carrying the class
// token, in document order. root itself is not matched. The returned slice is
// a snapshot: mutating the tree afterwards does not change it.
func QueryAllByClass(root *html.Node, class string) []*html.Node {
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && HasClass(c, class) {
				matches = append(matches, c)
			}
			walk(c)
		}
	}
	walk(root)
	return matches
}

// HasClass reports whether the element's class attribute contains the token.
// Matching is case-sensitive.
func HasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(Attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// AddClass appends the class token if the element does not already carry it.
func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	current := strings.TrimSpace(Attr(n, "class"))
	if current == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", current+" "+class)
}

// Attr returns the value of the attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces an attribute value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// TextContent concatenates every descendant text node, like the DOM property.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// SetTextContent removes all children and, if text is non-empty, appends a
// single text node.
func SetTextContent(n *html.Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Closest returns n or its nearest ancestor element with the given atom.
func Closest(n *html.Node, a atom.Atom) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.DataAtom == a {
			return cur
		}
	}
	return nil
}

// ClosestWithin is Closest bounded by limit: the search stops before
// leaving limit's subtree, and limit itself never matches.
func ClosestWithin(n *html.Node, a atom.Atom, limit *html.Node) *html.Node {
	for cur := n; cur != nil && cur != limit; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.DataAtom == a {
			return cur
		}
	}
	return nil
}

// ReplaceWith puts replacement at old's position in its parent and detaches
// old. replacement is detached from its own parent first. Returns false when
// old has no parent.
func ReplaceWith(old, replacement *html.Node) bool {
	parent := old.Parent
	if parent == nil {
		return false
	}
	if replacement.Parent != nil {
		replacement.Parent.RemoveChild(replacement)
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
	return true
}

// IsAttached reports whether n is still connected to root through its
// parent chain.
func IsAttached(n, root *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// FirstElement returns the first element node among nodes and their
// descendants whose tag name matches.
func FirstElement(nodes []*html.Node, tag string) *html.Node {
	for _, n := range nodes {
		if found := firstElement(n, tag); found != nil {
			return found
		}
	}
	return nil
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// NewElement builds a detached element with the given attributes (key/value
// pairs).
func NewElement(tag string, kv ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}
