// Package dateutil resolves the date printed on rendered pages.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used by a bare "auto".
const DefaultDateFormat = "YYYY-MM-DD"

// autoPrefix marks a value resolved from the render time.
const autoPrefix = "auto"

// dateTokens maps format tokens to Go layout parts, longest first so
// "MMMM" wins over "MM".
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets are named formats accepted after "auto:".
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a format such as "DD/MM/YYYY" to a Go layout.
// Text in brackets is kept literally: "[Updated] YYYY" prints "Updated 2025".
// Other characters are kept as written.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			layout.WriteString(literal)
			rest = after
			continue
		}

		n := 1
		part := rest[:1]
		for _, t := range dateTokens {
			if strings.HasPrefix(rest, t.token) {
				n, part = len(t.token), t.layout
				break
			}
		}
		layout.WriteString(part)
		rest = rest[n:]
	}

	return layout.String(), nil
}

// ResolveDate returns the page date for value:
//   - "" or any text not starting with "auto" is returned unchanged
//   - "auto" formats now as DefaultDateFormat
//   - "auto:FORMAT" formats now with FORMAT or a named preset
func ResolveDate(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, autoPrefix) {
		return value, nil
	}

	format := DefaultDateFormat
	if lower != autoPrefix {
		if !strings.HasPrefix(lower, autoPrefix+":") {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		// Tokens are case-sensitive, so cut from the original value
		format = value[len(autoPrefix)+1:]
		if preset, ok := DatePresets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
