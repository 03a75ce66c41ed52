package gfmrender

import "context"

// MathOptions configures a single math render call.
type MathOptions struct {
	// DisplayMode selects block rendering instead of inline.
	DisplayMode bool
	// ThrowOnError asks the typesetter to fail on malformed input instead of
	// rendering an inline error. The enhancer always sets it to false.
	ThrowOnError bool
}

// MathRenderer typesets a math source string into HTML markup.
type MathRenderer interface {
	RenderMath(ctx context.Context, source string, opts MathOptions) (string, error)
}

// DiagramSettings is the process-wide configuration of the diagram library.
type DiagramSettings struct {
	Theme string
	// StartOnLoad lets the library scan the page on its own. The enhancer
	// always disables it so rendering only happens on explicit calls.
	StartOnLoad bool
}

// DiagramRenderer turns diagram source into SVG markup.
// Initialize is called once before the first RenderDiagram.
type DiagramRenderer interface {
	Initialize(ctx context.Context, settings DiagramSettings) error
	RenderDiagram(ctx context.Context, id, source string) (string, error)
}

// Recorder receives enhancement counters. internal/metrics provides a
// Prometheus implementation.
type Recorder interface {
	ObserveHighlight(n int)
	ObserveMath(ok bool)
	ObserveDiagram(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveHighlight(int) {}
func (nopRecorder) ObserveMath(bool)     {}
func (nopRecorder) ObserveDiagram(bool)  {}
