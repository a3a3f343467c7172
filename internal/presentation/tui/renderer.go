package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders tutor replies (Markdown) with glamour.
// When no terminal renderer can be built, replies are passed through unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown + "\n", nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
