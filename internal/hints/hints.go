// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-gfmrender/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar:
// GFMRENDER_CONTAINER=1, or the /.dockerenv file Docker creates.
var IsInContainer = func() bool {
	return os.Getenv("GFMRENDER_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Suggest ROD_NO_SANDBOX for container/CI environments
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	// Suggest ROD_BROWSER_BIN if not set
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	// Highlighting needs no browser; diagrams can go through the mermaid CLI
	hints = append(hints, "without Chrome: --no-math --diagram-backend mmdc")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow renders.
func ForTimeout() string {
	return format("for large diagrams or a cold browser, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-gfmrender/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-gfmrender") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForThemeNotFound returns hints listing the available themes.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForStyleNotFound returns hints for page style not found errors.
func ForStyleNotFound(available []string) string {
	hint := "available styles: " + strings.Join(available, ", ")
	return format(hint + "; or add styles/<name>.css under --assets")
}

// ForDiagramCommand returns hints for a missing mermaid CLI.
func ForDiagramCommand(command string) string {
	return formatHints([]string{
		"install " + command + " with: npm install -g @mermaid-js/mermaid-cli",
		"or use --diagram-backend browser",
	})
}

// ForAddrInUse returns hints for a preview server that cannot listen.
func ForAddrInUse() string {
	return format("pick another port with --addr, e.g. --addr 127.0.0.1:8081")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
