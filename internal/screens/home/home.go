package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/screens/addword"
	"github.com/abhisek/oulpan/internal/screens/history"
	"github.com/abhisek/oulpan/internal/screens/reviewlist"
	sessionscreen "github.com/abhisek/oulpan/internal/screens/session"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/ui/components"
)

const (
	menuLearn = iota
	menuReview
	menuReviewList
	menuAdd
	menuHistory
	menuQuit
)

// HomeScreen is the main menu with pool stats.
type HomeScreen struct {
	deps     screen.Deps
	menu     components.Menu
	progress session.Progress
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}

	items := []components.MenuItem{
		{Label: "LEARN", Action: func() tea.Cmd {
			return push(sessionscreen.New(h.deps, queue.ModeLearn))
		}},
		{Label: "REVIEW", Action: func() tea.Cmd {
			return push(sessionscreen.New(h.deps, queue.ModeReview))
		}},
		{Label: "REVIEW LIST", Action: func() tea.Cmd {
			return push(reviewlist.New(h.deps.Controller))
		}},
		{Label: "ADD WORD", Action: func() tea.Cmd {
			return push(addword.New(h.deps))
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return push(history.New(h.deps.Events))
		}, Disabled: deps.Events == nil},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	h.refresh()
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// refresh recomputes the stats and the review label.
func (h *HomeScreen) refresh() {
	h.progress = h.deps.Controller.Progress()
	label := "REVIEW"
	if h.progress.Review > 0 {
		label = fmt.Sprintf("REVIEW (%d)", h.progress.Review)
	}
	h.menu.Items[menuReview].Label = label
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		h.refresh()
		return h, nil
	case tea.KeyMsg:
		if msg.String() == "q" {
			return h, tea.Quit
		}
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 26 || width < 80
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.progress, cw, compact),
		renderMenu(h.menu, cw, compact),
	}

	return renderCabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
