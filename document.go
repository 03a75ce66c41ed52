package gfmrender

import (
	"context"
	"fmt"

	"github.com/alnah/go-gfmrender/internal/dom"
)

// EnhanceHTML parses markup, enhances it and renders it back. Full documents
// are enhanced from <body>; fragments from their synthetic root. It waits for
// diagram renders before rendering, so the output is final. Diagram failures
// are returned alongside valid output: failed diagrams stay as their source.
func EnhanceHTML(ctx context.Context, e *Enhancer, markup string) (string, Report, error) {
	doc, isFragment, err := dom.Parse(markup)
	if err != nil {
		return "", Report{}, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}

	pass := e.Enhance(ctx, dom.Body(doc))
	waitErr := pass.Wait(ctx)
	report := pass.Report()

	// Render under the enhancer lock: a cancelled wait can leave renders
	// still completing.
	e.mu.Lock()
	out, err := dom.Render(doc, isFragment)
	e.mu.Unlock()
	if err != nil {
		return "", report, fmt.Errorf("rendering HTML: %w", err)
	}
	return out, report, waitErr
}
