package gfmrender

import "errors"

// Sentinel errors for library operations.
var (
	// Rendering errors.
	ErrMathRender    = errors.New("math render failed")
	ErrDiagramRender = errors.New("diagram render failed")
	ErrInvalidMarkup = errors.New("renderer returned invalid markup")
	ErrInitialize    = errors.New("renderer initialization failed")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrScriptLoad     = errors.New("failed to load renderer script")

	// Diagram CLI errors.
	ErrCommandNotFound = errors.New("diagram command not found")
	ErrCommandFailed   = errors.New("diagram command failed")

	// Theme errors.
	ErrUnknownTheme = errors.New("unknown highlight theme")

	// Pool errors.
	ErrPoolClosed = errors.New("enhancer pool is closed")
)
