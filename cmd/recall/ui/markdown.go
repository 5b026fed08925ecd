package ui

import (
	"github.com/charmbracelet/glamour"
)

// NewMarkdownRenderer builds the glamour renderer for a theme. The
// standard theme adapts to the terminal background; the retro theme
// uses the plain ascii style so rendered panels match the CRT look.
func NewMarkdownRenderer(retro bool, wrap int) *glamour.TermRenderer {
	if wrap <= 0 {
		wrap = 80
	}
	var renderer *glamour.TermRenderer
	if retro {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("ascii"),
			glamour.WithWordWrap(wrap),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
	}
	return renderer
}

// RenderMarkdown renders markdown with panic recovery
func RenderMarkdown(renderer *glamour.TermRenderer, content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if renderer != nil && content != "" {
		rendered, err := renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
