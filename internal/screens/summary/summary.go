package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/ui/components"
	"github.com/abhisek/oulpan/internal/ui/layout"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

// SummaryScreen displays the session counters when the learner leaves
// the quiz.
type SummaryScreen struct {
	progress session.Progress
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(p session.Progress) *SummaryScreen {
	return &SummaryScreen{progress: p}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// Accuracy returns the share of correct answers this session.
func (s *SummaryScreen) Accuracy() float64 {
	if s.progress.Attempts == 0 {
		return 0
	}
	return float64(s.progress.Correct) / float64(s.progress.Attempts)
}

func (s *SummaryScreen) View(width, height int) string {
	p := s.progress
	center := func(st lipgloss.Style, text string) string {
		return st.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Session complete!"))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Answers: %d        Correct: %d        Accuracy: %.0f%%",
		p.Attempts, p.Correct, s.Accuracy()*100)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	cw := components.ContentWidth(width)
	label := "Mastered"
	if p.Mode == queue.ModeLearn && p.MinMastery > 0 {
		label = fmt.Sprintf("Past level %d", p.MinMastery)
	}
	bar := components.NewProgressBar(label, p.MasteredOrAnswered, p.Total, cw)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if p.Review > 0 {
		b.WriteString(center(theme.Flagged, fmt.Sprintf("⚑ %d words waiting for review", p.Review)))
	} else {
		b.WriteString(center(theme.Correct, "No words waiting for review"))
	}

	return layout.Center(b.String(), width, height)
}
