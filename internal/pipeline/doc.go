// Package pipeline produces GitLab-style marked HTML from Markdown.
//
// It is the upstream half of rendering: markup carrying the js-* marker
// classes that the root gfmrender package enhances.
//   - Markdown preprocessing (line normalization)
//   - Markdown to HTML conversion via Goldmark, with fenced code, math and
//     mermaid blocks emitted the way GitLab marks them
//   - Page wrapping and stylesheet injection
//   - Relative path rebasing for output written to another directory
//
// Math typesetting and diagram rendering are not done here; the markers
// only flag the elements for the enhancer.
package pipeline
