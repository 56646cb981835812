package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# calcschnell

Evaluates arithmetic expressions with ` + "`+ - * /`" + `, parentheses and decimal numbers.
Multiplication and division bind tighter than addition and subtraction.

## Keypad

| Key | Action |
|-----|--------|
| digits, ` + "`+ - * / ( ) .`" + ` | type into the display |
| arrows | move the keypad focus |
| space | press the focused key |
| enter, ` + "`=`" + ` | evaluate |
| backspace | delete the last character |
| esc, ` + "`c`" + ` | clear the display |
| ctrl+y | copy the last result |
| ` + "`?`" + ` | toggle this help |
| q, ctrl+c | quit |

## Numbers

A number may carry one leading sign, so ` + "`2*-3`" + ` works but ` + "`--5`" + ` does not.
A successful evaluation clears the display; a failed one keeps it so you can fix it.
`

// helpRenderer renders the help page, caching one glamour renderer per width
type helpRenderer struct {
	style string
	cache map[int]*glamour.TermRenderer
}

func newHelpRenderer(style string) *helpRenderer {
	return &helpRenderer{style: style, cache: make(map[int]*glamour.TermRenderer)}
}

func (h *helpRenderer) render(width int) string {
	if width <= 0 {
		width = 80
	}

	renderer, ok := h.cache[width]
	if !ok {
		styleOpt := glamour.WithAutoStyle()
		if h.style != "" && h.style != "auto" {
			styleOpt = glamour.WithStandardStyle(h.style)
		}

		var err error
		renderer, err = glamour.NewTermRenderer(
			styleOpt,
			glamour.WithWordWrap(width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return helpMarkdown
		}
		h.cache[width] = renderer
	}

	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
