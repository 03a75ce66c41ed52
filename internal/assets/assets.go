package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	DefaultStyleName    = "github" // Layout close to GitLab's rendered Markdown
	DefaultTemplateName = "page"

	// StyleNone renders pages with the highlight theme only.
	StyleNone = "none"
)

// ValidateAssetName rejects names that could leave the asset directory or
// change the extension: empty names and names with separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
