package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/ui/components"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

// Block-letter title (same art as welcome/banner.go).
const titleFull = `  ██████╗ ██╗   ██╗██╗     ██████╗  █████╗ ███╗   ██╗
 ██╔═══██╗██║   ██║██║     ██╔══██╗██╔══██╗████╗  ██║
 ██║   ██║██║   ██║██║     ██████╔╝███████║██╔██╗ ██║
 ╚██████╔╝╚██████╔╝███████╗██║     ██║  ██║██║ ╚████║
  ╚═════╝  ╚═════╝ ╚══════╝╚═╝     ╚═╝  ╚═╝╚═╝  ╚═══╝`

const titleCompact = "O · U · L · P · A · N"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	text := titleFull
	if compact {
		text = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(text))
}

// renderStatsBar renders the pool stats in a bordered box matching content width.
func renderStatsBar(p session.Progress, cw int, compact bool) string {
	wordStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	reviewStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			wordStyle.Render(fmt.Sprintf("▤%d", p.Total)),
			masteredStyle.Render(fmt.Sprintf("★%d", p.MasteredOrAnswered)),
			reviewText(p.Review, true, reviewStyle, dimStyle),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			wordStyle.Render(fmt.Sprintf("▤ %d WORDS", p.Total)),
			masteredStyle.Render(fmt.Sprintf("★ %d PAST LEVEL %d", p.MasteredOrAnswered, p.MinMastery)),
			reviewText(p.Review, false, reviewStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func reviewText(flagged int, compact bool, active, dim lipgloss.Style) string {
	if flagged == 0 {
		if compact {
			return dim.Render("⚑0")
		}
		return dim.Render("⚑ NONE TO REVIEW")
	}
	if compact {
		return active.Render(fmt.Sprintf("⚑%d", flagged))
	}
	return active.Render(fmt.Sprintf("⚑ %d TO REVIEW", flagged))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button, or as plain
// lines when compact.
func renderMenu(menu components.Menu, cw int, compact bool) string {
	if compact {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(menu.View())
	}

	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, mi := range menu.Items {
		switch {
		case mi.Disabled:
			buttons = append(buttons, base.Foreground(theme.TextDim).Render(mi.Label))
		case i == menu.Selected:
			buttons = append(buttons, base.Bold(true).
				Foreground(theme.BgDark).
				Background(theme.Primary).
				BorderForeground(theme.Primary).
				Render("▸ "+mi.Label))
		default:
			buttons = append(buttons, base.Foreground(theme.Text).Render(mi.Label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderCabinetFrame wraps content in a double-border frame, centering
// vertically and horizontally within the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
