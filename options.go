package gfmrender

import "log/slog"

// Option configures an Enhancer.
type Option func(*Enhancer)

// enhancerConfig holds internal configuration for Enhancer.
type enhancerConfig struct {
	theme              string
	diagramTheme       string
	diagramConcurrency int
}

// Defaults used when no option overrides them.
const (
	DefaultTheme              = "white"
	DefaultDiagramTheme       = "neutral"
	defaultDiagramConcurrency = 4
)

// WithTheme sets the highlight theme class added to js-syntax-highlight
// elements. An empty name keeps the default.
func WithTheme(name string) Option {
	return func(e *Enhancer) {
		if name != "" {
			e.cfg.theme = name
		}
	}
}

// WithDiagramTheme sets the theme the diagram library is initialized with.
func WithDiagramTheme(name string) Option {
	return func(e *Enhancer) {
		if name != "" {
			e.cfg.diagramTheme = name
		}
	}
}

// WithDiagramConcurrency bounds the number of diagrams rendered at once.
// Panics if n < 1 (programmer error, similar to time.NewTicker).
func WithDiagramConcurrency(n int) Option {
	if n < 1 {
		panic("gfmrender: WithDiagramConcurrency requires n >= 1")
	}
	return func(e *Enhancer) {
		e.cfg.diagramConcurrency = n
	}
}

// WithMathRenderer sets the math typesetter. A nil renderer disables the
// math pass.
func WithMathRenderer(r MathRenderer) Option {
	return func(e *Enhancer) {
		e.math = r
	}
}

// WithDiagramRenderer sets the diagram renderer. A nil renderer disables the
// diagram pass.
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(e *Enhancer) {
		e.diagram = r
	}
}

// WithLogger sets the diagnostic logger. Render failures are reported here.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enhancer) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the counters sink.
func WithRecorder(r Recorder) Option {
	return func(e *Enhancer) {
		if r != nil {
			e.recorder = r
		}
	}
}
