package gfmrender

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// PoolFactory builds one pooled Enhancer and the resource backing its
// renderers. The closer may be nil.
type PoolFactory func() (*Enhancer, io.Closer)

// Pool manages Enhancers for parallel processing. Each one owns its
// renderers (typically a browser), enabling true parallelism.
// Enhancers are created lazily on first acquire to avoid startup delay.
type Pool struct {
	size    int
	factory PoolFactory
	closers []io.Closer
	sem     chan *Enhancer
	mu      sync.Mutex
	created int
	closed  bool
	done    chan struct{}
}

// NewPool creates a pool with capacity for n Enhancers built by factory.
func NewPool(n int, factory PoolFactory) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{
		size:    n,
		factory: factory,
		sem:     make(chan *Enhancer, n),
		done:    make(chan struct{}),
	}
}

// NewBrowserPool creates a pool whose Enhancers each own a BrowserRenderer
// used for both math and diagrams. opts apply to every Enhancer.
func NewBrowserPool(n int, cfg BrowserConfig, opts ...Option) *Pool {
	return NewPool(n, func() (*Enhancer, io.Closer) {
		r := NewBrowserRenderer(cfg)
		all := append([]Option{WithMathRenderer(r), WithDiagramRenderer(r)}, opts...)
		return NewEnhancer(all...), r
	})
}

// Acquire gets an Enhancer from the pool, creating one if needed.
// Blocks while all Enhancers are in use, until ctx ends or the pool closes.
func (p *Pool) Acquire(ctx context.Context) (*Enhancer, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	select {
	case e := <-p.sem:
		p.mu.Unlock()
		return e, nil
	default:
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Build outside the lock
		e, closer := p.factory()

		p.mu.Lock()
		if closer != nil {
			p.closers = append(p.closers, closer)
		}
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	select {
	case e := <-p.sem:
		return e, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an Enhancer to the pool. No-op after Close.
func (p *Pool) Release(e *Enhancer) {
	if e == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// Never blocks: at most size Enhancers exist.
	p.sem <- e
}

// Close releases every renderer resource.
// Returns an aggregated error if several fail to close.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	// Idle Enhancers hold closed renderers once the closers run.
	for len(p.sem) > 0 {
		<-p.sem
	}
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
