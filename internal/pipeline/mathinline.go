package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindInlineMath is the node kind of GitLab inline math: $`a^2`$.
var KindInlineMath = ast.NewNodeKind("InlineMath")

// InlineMathNode holds the source segment between the delimiters.
type InlineMathNode struct {
	ast.BaseInline
	Source text.Segment
}

// Kind implements ast.Node.
func (n *InlineMathNode) Kind() ast.NodeKind {
	return KindInlineMath
}

// Dump implements ast.Node.
func (n *InlineMathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var (
	mathOpen  = []byte("$`")
	mathClose = []byte("`$")
)

type inlineMathParser struct{}

func (p *inlineMathParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse consumes $`...`$ on a single line. Anything else is left to the
// other parsers as plain text.
func (p *inlineMathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if !bytes.HasPrefix(line, mathOpen) {
		return nil
	}
	end := bytes.Index(line[len(mathOpen):], mathClose)
	if end <= 0 {
		return nil
	}

	start := segment.Start + len(mathOpen)
	block.Advance(len(mathOpen) + end + len(mathClose))
	return &InlineMathNode{Source: text.NewSegment(start, start+end)}
}

type inlineMathRenderer struct{}

func (r *inlineMathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInlineMath, r.render)
}

func (r *inlineMathRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*InlineMathNode)
	_, _ = w.WriteString(`<code class="code math js-render-math" data-math-style="inline">`)
	_, _ = w.Write(util.EscapeHTML(n.Source.Value(source)))
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

type inlineMath struct{}

// InlineMath is a goldmark.Extender adding GitLab inline math.
var InlineMath goldmark.Extender = &inlineMath{}

func (e *inlineMath) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&inlineMathParser{}, 90),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&inlineMathRenderer{}, 500),
	))
}
