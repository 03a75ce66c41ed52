package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render markdown to enhanced HTML pages (default)")
	fmt.Fprintln(w, "  enhance    Enhance HTML carrying GitLab rendering markers")
	fmt.Fprintln(w, "  css        Print the highlight theme stylesheet")
	fmt.Fprintln(w, "  serve      Preview a directory of markdown over HTTP")
	fmt.Fprintln(w, "  watch      Re-render markdown when it changes")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check browser and mermaid CLI setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'gfmrender help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-json            Write logs as JSON")
}

// printRendererUsage prints the enhancement flags.
func printRendererUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --theme <s>           Highlight theme (see 'gfmrender css --list')")
	fmt.Fprintln(w, "      --no-math             Disable math rendering")
	fmt.Fprintln(w, "      --no-diagrams         Disable diagram rendering")
	fmt.Fprintln(w, "      --diagram-theme <s>   Mermaid theme (default: neutral)")
	fmt.Fprintln(w, "      --diagram-backend <s> Diagram backend: browser, mmdc")
	fmt.Fprintln(w, "      --diagram-command <s> Mermaid CLI binary (default: mmdc)")
	fmt.Fprintln(w, "      --diagram-concurrency <n>  Parallel diagrams per page")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-render browser timeout (e.g., 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto, max 8)")
	fmt.Fprintln(w)
}

// printPageUsage prints the page layout flags.
func printPageUsage(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --style <s>           Page stylesheet: github, plain, none")
	fmt.Fprintln(w, "      --template <s>        Page template (default: page)")
	fmt.Fprintln(w, "      --assets <dir>        Custom styles/<name>.css and templates/<name>.html")
	fmt.Fprintln(w, "      --date <s>            Footer date: text, auto, auto:FORMAT (e.g., auto:long)")
	fmt.Fprintln(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown files to standalone HTML pages with highlighted code,")
	fmt.Fprintln(w, "typeset math and diagrams.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (\"-\" = stdout)")
	fmt.Fprintln(w)
	printPageUsage(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// printEnhanceUsage prints usage for the enhance command.
func printEnhanceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender enhance <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Enhance HTML carrying js-syntax-highlight, js-render-math and")
	fmt.Fprintln(w, "js-render-mermaid markers.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file, directory, or \"-\" for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: stdout;")
	fmt.Fprintln(w, "                            required for directories)")
	fmt.Fprintln(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// printCSSUsage prints usage for the css command.
func printCSSUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender css [--theme <s>] [--list]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the highlight stylesheet, scoped to the theme class.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -l, --list                List available themes")
	fmt.Fprintln(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender serve [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview a directory of markdown. page.md is served at /page.html;")
	fmt.Fprintln(w, "pages re-render after their source changes. Prometheus metrics are")
	fmt.Fprintln(w, "served at /metrics.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default: 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --debounce <d>        File event coalescing (default: 100ms)")
	fmt.Fprintln(w)
	printPageUsage(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender watch <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown, then re-render each file when it changes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --debounce <d>        File event coalescing (default: 100ms)")
	fmt.Fprintln(w)
	printPageUsage(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gfmrender config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML, after the config file,")
	fmt.Fprintln(w, "GFMRENDER_* environment variables and flags are applied.")
	fmt.Fprintln(w)
	printPageUsage(w)
	printRendererUsage(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "enhance":
		printEnhanceUsage(env.Stdout)
	case "css":
		printCSSUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: gfmrender doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, the mermaid CLI and the environment.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: gfmrender version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: gfmrender help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
