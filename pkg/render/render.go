// Package render provides console renderers for faildiff's patterns.
package render

import "github.com/dkoosis/faildiff/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// ByName returns the renderer for a format name: "terminal", "llm", or
// "json". Unknown names fall back to the terminal renderer.
func ByName(format string, theme Theme, width int) Renderer {
	switch format {
	case "llm":
		return NewLLM()
	case "json":
		return NewJSON()
	default:
		return NewTerminal(theme, width)
	}
}
