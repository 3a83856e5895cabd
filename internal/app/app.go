package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/screens/home"
	quiz "github.com/abhisek/oulpan/internal/screens/session"
	"github.com/abhisek/oulpan/internal/screens/welcome"
	"github.com/abhisek/oulpan/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	screen.Deps

	// Clock must be the clock the controller was built with.
	Clock *Clock

	// Splash shows the welcome animation before the home screen.
	Splash bool

	// Mode, when set, opens the quiz directly in that mode.
	Mode queue.Mode
}

// poolLoadedMsg reports the result of the initial controller load.
type poolLoadedMsg struct {
	Err error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screen.Deps
	width  int
	height int
}

// newAppModel creates the root model with the first screen on the stack.
func newAppModel(opts Options) AppModel {
	var first screen.Screen
	switch {
	case opts.Mode != "":
		first = quiz.New(opts.Deps, opts.Mode)
	case opts.Splash:
		deps := opts.Deps
		first = welcome.New(func() screen.Screen { return home.New(deps) })
	default:
		first = home.New(opts.Deps)
	}
	return AppModel{
		router: router.New(first),
		deps:   opts.Deps,
	}
}

func (m AppModel) Init() tea.Cmd {
	ctrl, items := m.deps.Controller, m.deps.Items
	load := func() tea.Msg {
		if ctrl == nil || items == nil {
			return nil
		}
		return poolLoadedMsg{Err: ctrl.Load(context.Background(), items)}
	}
	return tea.Batch(load, m.router.Active().Init())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case timerFiredMsg:
		msg.fire()
		return m, m.router.Update(screen.RefreshMsg{})

	case poolLoadedMsg:
		if msg.Err != nil {
			logging.Error("initial load failed", "err", msg.Err)
		}
		return m, m.router.Update(screen.RefreshMsg{})

	case router.PopScreenMsg:
		// Leaving the root screen, e.g. the summary after `oulpan play`.
		if m.router.Depth() == 1 {
			return m, tea.Quit
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render draws the frame around the active screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits. The
// controller is torn down on the way out.
func Run(opts Options) error {
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	p := tea.NewProgram(newAppModel(opts))
	opts.Clock.Bind(p.Send)
	defer opts.Clock.Bind(nil)

	_, err := p.Run()
	if opts.Controller != nil {
		opts.Controller.Teardown()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
