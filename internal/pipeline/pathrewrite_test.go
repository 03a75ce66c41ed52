package pipeline

// Notes:
// - RebasePaths is tested with real temp directories so relative results
//   are computed the way the CLI computes them.
// - An empty outputDir means stdout: paths become file:// URLs, which the
//   stdout tables compare against pathToFileURL rather than literals.

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRebasePaths - Pages written to an output directory
// ---------------------------------------------------------------------------

func TestRebasePaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sourceDir := filepath.Join(root, "docs")
	mirrorDir := filepath.Join(root, "site", "docs")

	tests := []struct {
		name      string
		html      string
		outputDir string
		want      string
	}{
		{
			name:      "beside the source keeps image path",
			html:      `<img src="./img/logo.png">`,
			outputDir: sourceDir,
			want:      `<img src="img/logo.png"/>`,
		},
		{
			name:      "mirrored tree climbs back to the source",
			html:      `<img src="img/logo.png">`,
			outputDir: mirrorDir,
			want:      `<img src="../../docs/img/logo.png"/>`,
		},
		{
			name:      "markdown link becomes page link",
			html:      `<a href="guide.md">Guide</a>`,
			outputDir: sourceDir,
			want:      `<a href="guide.html">Guide</a>`,
		},
		{
			name:      "long markdown extension",
			html:      `<a href="sub/notes.markdown">Notes</a>`,
			outputDir: sourceDir,
			want:      `<a href="sub/notes.html">Notes</a>`,
		},
		{
			name:      "fragment survives the rewrite",
			html:      `<a href="guide.md#install">Install</a>`,
			outputDir: sourceDir,
			want:      `<a href="guide.html#install">Install</a>`,
		},
		{
			name:      "other files keep their extension",
			html:      `<a href="data.csv">Data</a>`,
			outputDir: mirrorDir,
			want:      `<a href="../../docs/data.csv">Data</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RebasePaths(tt.html, sourceDir, tt.outputDir)
			if err != nil {
				t.Fatalf("RebasePaths() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RebasePaths() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRebasePaths_Stdout - No output directory
// ---------------------------------------------------------------------------

func TestRebasePaths_Stdout(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "image becomes file URL",
			html: `<img src="img/logo.png">`,
			want: pathToFileURL(filepath.Join(sourceDir, "img", "logo.png")),
		},
		{
			name: "markdown link becomes file URL of the page",
			html: `<a href="guide.md#top">Guide</a>`,
			want: pathToFileURL(filepath.Join(sourceDir, "guide.html")) + "#top",
		},
		{
			name: "spaces are escaped",
			html: `<img src="my images/a.png">`,
			want: "my%20images/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RebasePaths(tt.html, sourceDir, "")
			if err != nil {
				t.Fatalf("RebasePaths() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RebasePaths() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRebasePaths_Unchanged - Values left as written
// ---------------------------------------------------------------------------

func TestRebasePaths_Unchanged(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sourceDir := filepath.Join(root, "docs")
	outputDir := filepath.Join(root, "site")

	for _, html := range []string{
		`<img src="https://example.com/a.png"/>`,
		`<img src="//cdn.example.com/a.png"/>`,
		`<img src="data:image/png;base64,AAAA"/>`,
		`<img src="file:///tmp/a.png"/>`,
		`<img src="/abs/a.png"/>`,
		`<img src="../outside.png"/>`,
		`<img src="img/../../escape.png"/>`,
		`<a href="#section">jump</a>`,
		`<a href="mailto:team@example.com">mail</a>`,
		`<a href="https://example.com/guide.md">remote</a>`,
		`<video src="clip.mp4"></video>`,
		`<script src="app.js"></script>`,
		`<link href="style.css"/>`,
	} {
		t.Run(html, func(t *testing.T) {
			t.Parallel()

			got, err := RebasePaths(html, sourceDir, outputDir)
			if err != nil {
				t.Fatalf("RebasePaths() error = %v", err)
			}
			if got != html {
				t.Errorf("RebasePaths() = %q, want unchanged", got)
			}
		})
	}

	t.Run("empty source dir", func(t *testing.T) {
		t.Parallel()

		const in = `<img src="a.png">`
		got, err := RebasePaths(in, "", outputDir)
		if err != nil || got != in {
			t.Errorf("RebasePaths() = %q, %v, want input unchanged", got, err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRebasePaths_Documents - Full documents and fragments
// ---------------------------------------------------------------------------

func TestRebasePaths_Documents(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()

	t.Run("full document keeps its shell", func(t *testing.T) {
		t.Parallel()

		in := `<!DOCTYPE html><html><head><title>T</title></head><body><img src="a.png"></body></html>`
		got, err := RebasePaths(in, sourceDir, sourceDir)
		if err != nil {
			t.Fatalf("RebasePaths() error = %v", err)
		}
		for _, want := range []string{"<!DOCTYPE html>", "<title>T</title>", `<img src="a.png"/>`} {
			if !strings.Contains(got, want) {
				t.Errorf("RebasePaths() = %q, missing %q", got, want)
			}
		}
	})

	t.Run("fragment gains no shell", func(t *testing.T) {
		t.Parallel()

		got, err := RebasePaths(`<p>see <a href="b.md">b</a></p>`, sourceDir, sourceDir)
		if err != nil {
			t.Fatalf("RebasePaths() error = %v", err)
		}
		if got != `<p>see <a href="b.html">b</a></p>` {
			t.Errorf("RebasePaths() = %q", got)
		}
	})

	t.Run("other attributes preserved", func(t *testing.T) {
		t.Parallel()

		got, err := RebasePaths(`<img alt="Logo" src="a.png" width="40">`, sourceDir, sourceDir)
		if err != nil {
			t.Fatalf("RebasePaths() error = %v", err)
		}
		if got != `<img alt="Logo" src="a.png" width="40"/>` {
			t.Errorf("RebasePaths() = %q", got)
		}
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"img/a.png", true},
		{"./a.png", true},
		{"../a.png", true},
		{"guide.md#top", true},
		{"", false},
		{"#top", false},
		{"/abs.png", false},
		{"//cdn/a.png", false},
		{"http://x/a.png", false},
		{"https://x/a.png", false},
		{"file:///a.png", false},
		{"data:image/png;base64,AA", false},
		{"mailto:a@b.c", false},
	}

	for _, tt := range tests {
		if got := isRelativePath(tt.path); got != tt.want {
			t.Errorf("isRelativePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	dir := filepath.FromSlash("/docs")
	tests := []struct {
		path string
		want bool
	}{
		{"/docs/a.png", true},
		{"/docs/sub/a.png", true},
		{"/docs", true},
		{"/docs/../etc/passwd", false},
		{"/docs-other/a.png", false},
		{"/a.png", false},
	}

	for _, tt := range tests {
		if got := isPathUnderDir(filepath.FromSlash(tt.path), dir); got != tt.want {
			t.Errorf("isPathUnderDir(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix path layout")
	}
	if got := pathToFileURL("/docs/a b.png"); got != "file:///docs/a%20b.png" {
		t.Errorf("pathToFileURL() = %q", got)
	}
}
