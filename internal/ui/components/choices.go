package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/choices"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

// ChoiceState is how the option list is drawn.
type ChoiceState int

const (
	ChoicesOpen    ChoiceState = iota // waiting for an answer
	ChoicesCorrect                    // the chosen option was right
	ChoicesWrong                      // the chosen option was wrong
)

// ChoiceList renders numbered options. Chosen is the option id picked
// by the learner and is only used once the list is not open.
type ChoiceList struct {
	Options []choices.Option
	Cursor  int
	Chosen  string
	State   ChoiceState
}

// Move shifts the cursor by delta, staying in range.
func (c *ChoiceList) Move(delta int) {
	c.Cursor = min(max(c.Cursor+delta, 0), max(len(c.Options)-1, 0))
}

// AtCursor returns the option under the cursor.
func (c ChoiceList) AtCursor() (choices.Option, bool) {
	if c.Cursor < 0 || c.Cursor >= len(c.Options) {
		return choices.Option{}, false
	}
	return c.Options[c.Cursor], true
}

// ByNumber returns the option shown with the 1-based number n.
func (c ChoiceList) ByNumber(n int) (choices.Option, bool) {
	if n < 1 || n > len(c.Options) {
		return choices.Option{}, false
	}
	return c.Options[n-1], true
}

func (c ChoiceList) View(width int) string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if c.State == ChoicesOpen && i == c.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.Text)

		style := theme.Unselected
		switch {
		case c.State == ChoicesOpen && i == c.Cursor:
			style = theme.Selected
		case c.State == ChoicesCorrect && opt.ID == c.Chosen:
			style = theme.Correct
		case c.State == ChoicesWrong && opt.ID == c.Chosen:
			style = theme.Incorrect
		case c.State != ChoicesOpen:
			style = theme.Dimmed
		}
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Cabinet centres content in a rounded card of the given width.
func Cabinet(content string, width int) string {
	return theme.Card.Width(width).Render(content)
}

// ContentWidth is the width used for cards and lists.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

// Badge renders a small inline label.
func Badge(text string, color lipgloss.Style) string {
	return color.Render("[" + text + "]")
}
