package gfmrender

import (
	"context"
	"errors"
	"sync"
)

// Report counts what an enhancement pass did.
type Report struct {
	Highlighted      int
	MathRendered     int
	MathFailed       int
	DiagramsRendered int
	DiagramsFailed   int
	// DiagramsDropped counts renders whose element left the tree before
	// the result arrived.
	DiagramsDropped int
}

// Pass is the handle of one enhancement pass. The highlight and math passes
// have completed by the time Enhance returns it; diagram renders complete
// asynchronously and are awaited with Done or Wait.
type Pass struct {
	done chan struct{}

	mu     sync.Mutex
	report Report
	errs   []error
}

func newPass() *Pass {
	return &Pass{done: make(chan struct{})}
}

// Done returns a channel closed once every diagram render has finished.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the pass completes or ctx ends. It returns the diagram
// render failures joined together, or the context error.
func (p *Pass) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return errors.Join(p.errs...)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report returns a snapshot of the counters. Diagram counters are final only
// after Done is closed.
func (p *Pass) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

func (p *Pass) update(fn func(r *Report)) {
	p.mu.Lock()
	fn(&p.report)
	p.mu.Unlock()
}

func (p *Pass) fail(err error) {
	p.mu.Lock()
	p.report.DiagramsFailed++
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}

func (p *Pass) finish() {
	close(p.done)
}
