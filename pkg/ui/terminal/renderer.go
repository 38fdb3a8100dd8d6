// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"io"

	"github.com/arthur-debert/jibs-autolinker/pkg/ui/styles"
	"github.com/arthur-debert/jibs-autolinker/pkg/ui/text"
)

// Renderer is the text layout painted with the lipgloss styles
type Renderer struct {
	*text.Renderer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{Renderer: text.NewStyled(w, paint)}, nil
}

func paint(style, s string) string {
	return styles.GetStyle(style).Render(s)
}
