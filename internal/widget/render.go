package widget

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into display text. *glamour.TermRenderer satisfies it.
type Renderer interface {
	Render(markdown string) (string, error)
}

// NewRenderer builds a glamour renderer wrapping at width. An empty style
// picks light or dark from the terminal background.
func NewRenderer(width int, style string) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	return glamour.NewTermRenderer(opts...)
}

// Render parses the message text as markdown. It falls back to the raw text
// when r is nil or fails.
func Render(r Renderer, m Message) string {
	if r == nil {
		return m.Text
	}
	out, err := r.Render(m.Text)
	if err != nil {
		return m.Text
	}
	return strings.Trim(out, "\n")
}
