package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	quiet    bool
	verbose  bool
	logLevel string
	logJSON  bool
}

// rendererFlags select and tune the enhancement passes.
type rendererFlags struct {
	theme          string
	diagramTheme   string
	diagramBackend string
	diagramCommand string
	concurrency    int
	noMath         bool
	noDiagrams     bool
	timeout        string
	workers        int
}

// pageFlags shape the standalone page around rendered Markdown.
type pageFlags struct {
	style    string
	template string
	assets   string
	date     string
}

// serveFlags configure the preview server and watcher.
type serveFlags struct {
	addr     string
	debounce string
}

// commandFlags holds every flag a command may register. Groups a command
// does not register keep their zero values.
type commandFlags struct {
	common   commonFlags
	renderer rendererFlags
	page     pageFlags
	serve    serveFlags
	output   string
	list     bool // css only
}

// flagGroup selects the flag groups a command registers.
type flagGroup int

const (
	groupRenderer flagGroup = 1 << iota
	groupOutput
	groupServe
	groupList
	groupPage
)

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
}

// addRendererFlags adds enhancement flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.theme, "theme", "", "highlight theme (default: white)")
	fs.StringVar(&f.diagramTheme, "diagram-theme", "", "mermaid theme (default: neutral)")
	fs.StringVar(&f.diagramBackend, "diagram-backend", "", "diagram backend: browser, mmdc")
	fs.StringVar(&f.diagramCommand, "diagram-command", "", "mermaid CLI binary for the mmdc backend")
	fs.IntVar(&f.concurrency, "diagram-concurrency", 0, "parallel diagram renders per page (0 = default)")
	fs.BoolVar(&f.noMath, "no-math", false, "disable math rendering")
	fs.BoolVar(&f.noDiagrams, "no-diagrams", false, "disable diagram rendering")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-render browser timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.style, "style", "", "page stylesheet (default: github, none = theme only)")
	fs.StringVar(&f.template, "template", "", "page template (default: page)")
	fs.StringVar(&f.assets, "assets", "", "directory with custom styles/ and templates/")
	fs.StringVar(&f.date, "date", "", "footer date: text, auto, or auto:FORMAT")
}

// addServeFlags adds preview server flags to a FlagSet.
func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVar(&f.addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
	fs.StringVar(&f.debounce, "debounce", "", "file event coalescing delay (e.g., 100ms)")
}

// parseCommandFlags parses args for the named command and returns positional
// args. usage is printed on -h and on parse errors.
func parseCommandFlags(name string, args []string, groups flagGroup, usage func(w io.Writer), stderr io.Writer) (*commandFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commandFlags{}

	addCommonFlags(fs, &f.common)
	if groups&groupRenderer != 0 {
		addRendererFlags(fs, &f.renderer)
	}
	if groups&groupPage != 0 {
		addPageFlags(fs, &f.page)
	}
	if groups&groupOutput != 0 {
		fs.StringVarP(&f.output, "output", "o", "", "output file or directory (\"-\" = stdout)")
	}
	if groups&groupServe != 0 {
		addServeFlags(fs, &f.serve)
	}
	if groups&groupList != 0 {
		fs.BoolVarP(&f.list, "list", "l", false, "list available themes")
	}

	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil, err
		}
		return nil, nil, usageError(err)
	}

	return f, fs.Args(), nil
}
