package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/queue"
	sess "github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/ui/components"
	"github.com/abhisek/oulpan/internal/ui/layout"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	switch s.ctrl.Phase() {
	case sess.PhaseLoading:
		return renderMessage(width, height, theme.Dimmed, "Loading words...")
	case sess.PhaseUnavailable:
		return renderMessage(width, height, theme.Incorrect,
			"The word store could not be read.\nCheck the log file and try again.")
	case sess.PhaseEmpty:
		return renderMessage(width, height, theme.Dimmed,
			"No words yet.\n\nPress A to add one, or run `oulpan import`.")
	case sess.PhaseReviewComplete:
		return renderMessage(width, height, theme.Correct,
			"Nothing left to review!\n\nPress Enter to go back to learning.")
	}
	return s.renderCard(width, height)
}

func renderMessage(width, height int, style lipgloss.Style, text string) string {
	return layout.Center(style.Align(lipgloss.Center).Render(text), width, height)
}

func (s *SessionScreen) renderCard(width, height int) string {
	cur, ok := s.ctrl.Current()
	if !ok {
		return ""
	}
	cw := components.ContentWidth(width)

	var b strings.Builder

	p := s.ctrl.Progress()
	bar := components.NewProgressBar(progressLabel(p), p.MasteredOrAnswered, p.Total, cw)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	prompt := theme.Prompt.Render(cur.Prompt)
	if len(cur.Tags) > 0 {
		prompt += "\n" + theme.Hint.Render(cur.Tags.String())
	}
	b.WriteString(components.Cabinet(prompt, cw))
	b.WriteString("\n\n")

	b.WriteString(s.list.View(cw))
	b.WriteString("\n\n")
	b.WriteString(s.renderFeedback(cur))

	if s.confirmDelete {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Delete %q? (y/n)", cur.Prompt)))
	} else if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
	}

	return layout.Center(b.String(), width, height)
}

func progressLabel(p sess.Progress) string {
	if p.Mode == queue.ModeReview {
		return fmt.Sprintf("Review · %d left", p.QueueRemaining)
	}
	return fmt.Sprintf("Level %d tier · ★ %d total", p.MinMastery, p.TotalMastery)
}

func (s *SessionScreen) renderFeedback(cur item.Item) string {
	var lines []string
	switch s.ctrl.Status() {
	case sess.StatusCorrect:
		lines = append(lines, theme.Correct.Render("Correct!"))
		if cur.Explanation != "" {
			lines = append(lines, theme.Body.Render(cur.Explanation))
		}
	case sess.StatusWrong:
		lines = append(lines, theme.Incorrect.Render("Not quite. Try again."))
	default:
		lines = append(lines, theme.Hint.Render("Pick the translation"))
	}
	if s.ctrl.MarkedForReview() || cur.NeedsReview {
		lines = append(lines, theme.Flagged.Render("⚑ marked for review"))
	}
	return strings.Join(lines, "\n")
}
