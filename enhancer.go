package gfmrender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-gfmrender/internal/dom"
	"github.com/alnah/go-gfmrender/internal/log"
)

// Marker classes and attributes consumed from upstream markup.
const (
	ClassSyntaxHighlight = "js-syntax-highlight"
	ClassRenderMath      = "js-render-math"
	ClassRenderMermaid   = "js-render-mermaid"

	AttrMathStyle    = "data-math-style"
	MathStyleDisplay = "display"
)

// Classes and attributes added to rendered diagrams.
const (
	ClassMermaid       = "mermaid"
	ClassDiagramSource = "source"
)

// errDetached marks a diagram result whose element left the tree.
var errDetached = errors.New("element detached before diagram completed")

// Enhancer post-processes rendered markup: it themes highlighted code,
// typesets math and renders diagrams in a DOM subtree.
// Create with NewEnhancer, optionally call Init, then Enhance.
type Enhancer struct {
	cfg      enhancerConfig
	math     MathRenderer
	diagram  DiagramRenderer
	logger   *slog.Logger
	recorder Recorder

	initOnce sync.Once
	initErr  error

	// mu serializes DOM mutation between passes and diagram completions.
	mu       sync.Mutex
	inflight map[*html.Node]struct{}
	seq      atomic.Uint64
}

// NewEnhancer creates an Enhancer. Without renderer options only the
// highlight pass does anything.
func NewEnhancer(opts ...Option) *Enhancer {
	e := &Enhancer{
		cfg: enhancerConfig{
			theme:              DefaultTheme,
			diagramTheme:       DefaultDiagramTheme,
			diagramConcurrency: defaultDiagramConcurrency,
		},
		logger:   log.Discard(),
		recorder: nopRecorder{},
		inflight: make(map[*html.Node]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Theme returns the highlight theme class.
func (e *Enhancer) Theme() string {
	return e.cfg.theme
}

// Init configures the diagram library once: automatic rendering disabled,
// configured theme. Later calls return the first result. Enhance calls it
// when the caller has not.
func (e *Enhancer) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		if e.diagram == nil {
			return
		}
		err := e.diagram.Initialize(ctx, DiagramSettings{
			Theme:       e.cfg.diagramTheme,
			StartOnLoad: false,
		})
		if err != nil {
			e.initErr = wrapErr(ErrInitialize, err)
		}
	})
	return e.initErr
}

// Enhance runs the highlight, math and diagram passes over root's
// descendants, in that order. The diagram pass goes last because it replaces
// enclosing containers. Highlight and math results are in the tree when
// Enhance returns; diagram results arrive asynchronously, so callers that
// read the tree must wait on the returned Pass first.
func (e *Enhancer) Enhance(ctx context.Context, root *html.Node) *Pass {
	p := newPass()
	if root == nil {
		p.finish()
		return p
	}

	e.mu.Lock()
	e.highlightAll(root, p)
	e.renderMathAll(ctx, root, p)
	jobs := e.prepareDiagrams(root)
	e.mu.Unlock()

	if len(jobs) == 0 {
		p.finish()
		return p
	}

	go e.runDiagrams(ctx, root, jobs, p)
	return p
}

// highlightAll tags every highlighted block with the theme class.
func (e *Enhancer) highlightAll(root *html.Node, p *Pass) {
	elements := dom.QueryAllByClass(root, ClassSyntaxHighlight)
	for _, el := range elements {
		dom.AddClass(el, e.cfg.theme)
	}
	if len(elements) > 0 {
		p.update(func(r *Report) { r.Highlighted += len(elements) })
		e.recorder.ObserveHighlight(len(elements))
	}
}

// renderMathAll typesets every math element. Failures are logged and leave
// the element as is.
func (e *Enhancer) renderMathAll(ctx context.Context, root *html.Node, p *Pass) {
	if e.math == nil {
		return
	}
	for _, el := range dom.QueryAllByClass(root, ClassRenderMath) {
		if err := e.renderMath(ctx, el); err != nil {
			e.logger.WarnContext(ctx, "math render failed",
				slog.String("source", dom.TextContent(el)),
				slog.Any("error", err))
			p.update(func(r *Report) { r.MathFailed++ })
			e.recorder.ObserveMath(false)
			continue
		}
		p.update(func(r *Report) { r.MathRendered++ })
		e.recorder.ObserveMath(true)
	}
}

func (e *Enhancer) renderMath(ctx context.Context, el *html.Node) error {
	source := dom.TextContent(el)
	display := dom.Attr(el, AttrMathStyle) == MathStyleDisplay

	markup, err := e.math.RenderMath(ctx, source, MathOptions{DisplayMode: display, ThrowOnError: false})
	if err != nil {
		return wrapErr(ErrMathRender, err)
	}

	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return wrapErr(ErrInvalidMarkup, err)
	}

	span := dom.NewElement("span")
	for _, n := range nodes {
		span.AppendChild(n)
	}
	if !dom.ReplaceWith(el, span) {
		return fmt.Errorf("%w: element has no parent", ErrMathRender)
	}
	return nil
}

// diagramJob is one scheduled diagram render.
type diagramJob struct {
	el     *html.Node
	id     string
	source string
}

// prepareDiagrams normalizes every diagram element to its plain source text
// and records it as in flight. Elements already in flight from an earlier
// pass, or already holding their rendered SVG, are skipped.
func (e *Enhancer) prepareDiagrams(root *html.Node) []diagramJob {
	if e.diagram == nil {
		return nil
	}
	var jobs []diagramJob
	for _, el := range dom.QueryAllByClass(root, ClassRenderMermaid) {
		if _, busy := e.inflight[el]; busy || hasRenderedDiagram(el) {
			continue
		}
		source := dom.TextContent(el)
		// Drops spans injected by upstream syntax highlighting.
		dom.SetTextContent(el, source)

		e.inflight[el] = struct{}{}
		jobs = append(jobs, diagramJob{
			el:     el,
			id:     "mermaid-" + strconv.FormatUint(e.seq.Add(1), 10),
			source: source,
		})
	}
	return jobs
}

func (e *Enhancer) runDiagrams(ctx context.Context, root *html.Node, jobs []diagramJob, p *Pass) {
	defer p.finish()

	if err := e.Init(ctx); err != nil {
		e.mu.Lock()
		for _, j := range jobs {
			delete(e.inflight, j.el)
		}
		e.mu.Unlock()
		for _, j := range jobs {
			e.diagramFailed(ctx, j, wrapErr(ErrDiagramRender, err), p)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.diagramConcurrency)
	for _, j := range jobs {
		g.Go(func() error {
			e.renderDiagram(ctx, root, j, p)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enhancer) renderDiagram(ctx context.Context, root *html.Node, j diagramJob, p *Pass) {
	markup, err := e.diagram.RenderDiagram(ctx, j.id, j.source)

	e.mu.Lock()
	delete(e.inflight, j.el)
	if err == nil {
		err = placeDiagram(root, j, markup)
	}
	e.mu.Unlock()
	if err != nil && !errors.Is(err, errDetached) {
		err = wrapErr(ErrDiagramRender, err)
	}

	switch {
	case err == nil:
		p.update(func(r *Report) { r.DiagramsRendered++ })
		e.recorder.ObserveDiagram(true)
	case errors.Is(err, errDetached):
		e.logger.DebugContext(ctx, "diagram result dropped", slog.String("id", j.id))
		p.update(func(r *Report) { r.DiagramsDropped++ })
	default:
		e.diagramFailed(ctx, j, err, p)
	}
}

func (e *Enhancer) diagramFailed(ctx context.Context, j diagramJob, err error, p *Pass) {
	e.logger.ErrorContext(ctx, "diagram render failed",
		slog.String("id", j.id),
		slog.Any("error", err))
	p.fail(fmt.Errorf("%s: %w", j.id, err))
	e.recorder.ObserveDiagram(false)
}

// placeDiagram swaps the rendered SVG into the tree. The SVG replaces the
// enclosing <pre> so it renders as regular content rather than preformatted
// text, and carries a hidden copy of the source for copy-as-markdown tools.
func placeDiagram(root *html.Node, j diagramJob, markup string) error {
	if !dom.IsAttached(j.el, root) {
		return errDetached
	}

	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return wrapErr(ErrInvalidMarkup, err)
	}
	svg := dom.FirstElement(nodes, "svg")
	if svg == nil {
		return fmt.Errorf("%w: no <svg> element in diagram output", ErrInvalidMarkup)
	}
	if svg.Parent != nil {
		svg.Parent.RemoveChild(svg)
	}

	dom.AddClass(svg, ClassMermaid)

	sourceEl := dom.NewElement("text", "class", ClassDiagramSource, "display", "none")
	sourceEl.Namespace = "svg"
	dom.SetTextContent(sourceEl, j.source)
	svg.AppendChild(sourceEl)

	if pre := dom.ClosestWithin(j.el, atom.Pre, root); pre != nil {
		dom.ReplaceWith(pre, svg)
		return nil
	}
	dom.RemoveChildren(j.el)
	j.el.AppendChild(svg)
	return nil
}

// hasRenderedDiagram reports whether placeDiagram already appended an SVG to
// el, which happens when the marked element has no enclosing <pre>.
func hasRenderedDiagram(el *html.Node) bool {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "svg" && dom.HasClass(c, ClassMermaid) {
			return true
		}
	}
	return false
}

// wrapErr wraps err with sentinel unless it already matches.
func wrapErr(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
