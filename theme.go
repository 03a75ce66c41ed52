package gfmrender

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ThemeNone disables highlight styling: the class is still added but no
// stylesheet is produced.
const ThemeNone = "none"

// gitlabThemes maps GitLab highlight theme names to chroma styles.
var gitlabThemes = map[string]string{
	"white":           "github",
	"dark":            "monokai",
	"monokai":         "monokai",
	"solarized-light": "solarized-light",
	"solarized-dark":  "solarized-dark",
}

// Theme is a resolved highlight theme: the class added to highlighted blocks
// and the chroma style that backs its stylesheet.
type Theme struct {
	Name  string
	style *chroma.Style
}

// ResolveTheme looks up a theme by GitLab name or chroma style name.
func ResolveTheme(name string) (*Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	if name == ThemeNone {
		return &Theme{Name: name}, nil
	}
	styleName := name
	if mapped, ok := gitlabThemes[name]; ok {
		styleName = mapped
	}
	style, ok := styles.Registry[styleName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return &Theme{Name: name, style: style}, nil
}

// CSS renders the theme stylesheet with every rule scoped to the theme class.
// Returns "" for ThemeNone.
func (t *Theme) CSS() (string, error) {
	if t.style == nil {
		return "", nil
	}
	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, t.style); err != nil {
		return "", fmt.Errorf("writing theme CSS: %w", err)
	}
	return strings.ReplaceAll(buf.String(), ".chroma", "."+t.Name), nil
}

// ThemeNames lists the accepted theme names: GitLab names first, then
// chroma styles, each group sorted.
func ThemeNames() []string {
	gitlab := make([]string, 0, len(gitlabThemes)+1)
	for name := range gitlabThemes {
		gitlab = append(gitlab, name)
	}
	gitlab = append(gitlab, ThemeNone)
	sort.Strings(gitlab)

	chromaNames := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		if _, dup := gitlabThemes[name]; dup {
			continue
		}
		chromaNames = append(chromaNames, name)
	}
	sort.Strings(chromaNames)

	return append(gitlab, chromaNames...)
}
