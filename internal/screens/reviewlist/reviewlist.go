// Package reviewlist shows the items flagged for review and lets the
// learner clear flags one at a time.
package reviewlist

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/ui/layout"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

// ReviewListScreen lists review-flagged items.
type ReviewListScreen struct {
	ctrl     *session.Controller
	items    []item.Item
	selected int
}

var _ screen.Screen = (*ReviewListScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewListScreen)(nil)
var _ screen.StatusProvider = (*ReviewListScreen)(nil)

// New creates the review list over the controller's pool.
func New(ctrl *session.Controller) *ReviewListScreen {
	s := &ReviewListScreen{ctrl: ctrl}
	s.reload()
	return s
}

func (s *ReviewListScreen) Init() tea.Cmd {
	return nil
}

func (s *ReviewListScreen) Title() string {
	return "Review list"
}

func (s *ReviewListScreen) Status() string {
	return fmt.Sprintf("⚑ %d  ", len(s.items))
}

func (s *ReviewListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "X", Description: "Clear flag"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewListScreen) reload() {
	s.items = s.ctrl.ReviewItems()
	s.selected = min(s.selected, max(len(s.items)-1, 0))
}

func (s *ReviewListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		s.reload()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "x", "enter", "delete", "backspace":
			if s.selected < len(s.items) {
				s.ctrl.ClearReview(s.items[s.selected].ID)
				s.reload()
			}
		}
	}
	return s, nil
}

func (s *ReviewListScreen) View(width, height int) string {
	if len(s.items) == 0 {
		return layout.Center(theme.Correct.Render("Nothing flagged for review."), width, height)
	}

	var b strings.Builder
	b.WriteString("\n")

	rows := max(height-2, 1)
	start := max(s.selected-rows+1, 0)
	end := min(start+rows, len(s.items))

	for i := start; i < end; i++ {
		it := s.items[i]
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  →  %s", prefix, it.Prompt, it.AnswerText())
		if it.ErrorCount > 0 {
			line += fmt.Sprintf("   (%d missed)", it.ErrorCount)
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
