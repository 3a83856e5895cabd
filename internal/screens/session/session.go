package session

import (
	"context"
	"errors"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/screens/addword"
	"github.com/abhisek/oulpan/internal/screens/summary"
	sess "github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/store"
	"github.com/abhisek/oulpan/internal/ui/components"
	"github.com/abhisek/oulpan/internal/ui/layout"
)

// SessionScreen is the quiz: one card, its options and the feedback
// state, all read from the session controller.
type SessionScreen struct {
	ctrl  *sess.Controller
	items store.ItemRepo
	deps  screen.Deps

	list    components.ChoiceList
	shownID item.ID
	shown   bool

	confirmDelete bool
	notice        string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Resumer = (*SessionScreen)(nil)

// New creates the quiz screen in the given mode. The controller keeps its
// current mode when mode is empty.
func New(deps screen.Deps, mode queue.Mode) *SessionScreen {
	if mode != "" && deps.Controller.Mode() != mode {
		deps.Controller.SetMode(mode)
	}
	s := &SessionScreen{ctrl: deps.Controller, items: deps.Items, deps: deps}
	s.sync()
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	if s.ctrl.Mode() == queue.ModeReview {
		return "Review"
	}
	return "Learn"
}

// Status shows the progress counter in the header.
func (s *SessionScreen) Status() string {
	p := s.ctrl.Progress()
	return strconv.Itoa(p.MasteredOrAnswered) + "/" + strconv.Itoa(p.Total) + "  ⚑ " + strconv.Itoa(p.Review) + "  "
}

func (s *SessionScreen) Resume() tea.Cmd {
	s.sync()
	return nil
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirmDelete {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	if s.ctrl.Phase() != sess.PhaseActive {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Switch mode"},
			{Key: "A", Description: "Add word"},
			{Key: "Esc", Description: "Back"},
		}
	}
	switch s.ctrl.Status() {
	case sess.StatusCorrect:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "R", Description: "Review later"},
			{Key: "Tab", Description: "Switch mode"},
		}
	case sess.StatusWrong:
		return []layout.KeyHint{
			{Key: "M", Description: "Mark"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-" + strconv.Itoa(max(len(s.list.Options), 1)), Description: "Answer"},
		{Key: "M", Description: "Mark"},
		{Key: "R/N", Description: "Skip"},
		{Key: "E", Description: "Edit"},
		{Key: "Ctrl+D", Description: "Delete"},
		{Key: "Tab", Description: "Mode"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		s.sync()
		return s, nil

	case itemDeletedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, store.ErrNotFound) {
			logging.Error("delete item", "id", msg.ID, "err", msg.Err)
			s.notice = "Delete failed: " + msg.Err.Error()
			return s, nil
		}
		s.ctrl.Forget(msg.ID)
		s.notice = "Deleted."
		s.sync()
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmDelete {
		switch key {
		case "y", "Y":
			s.confirmDelete = false
			return s, s.deleteCurrent()
		case "n", "N":
			s.confirmDelete = false
		}
		return s, nil
	}

	s.notice = ""

	switch key {
	case "tab":
		s.ctrl.SetMode(s.ctrl.Mode().Toggle())
		s.sync()
		return s, nil
	case "a":
		return s, push(addword.New(s.deps))
	}

	if s.ctrl.Phase() != sess.PhaseActive {
		if key == "enter" && s.ctrl.Phase() == sess.PhaseReviewComplete {
			s.ctrl.SetMode(queue.ModeLearn)
			s.sync()
		}
		if key == "q" {
			return s, s.finish()
		}
		return s, nil
	}

	switch key {
	case "m":
		s.report(s.ctrl.MarkForReview())
		return s, nil
	case "r":
		s.report(s.ctrl.MarkAndContinue())
		s.sync()
		return s, nil
	case "n":
		s.report(s.ctrl.ContinueClean())
		s.sync()
		return s, nil
	case "e":
		if cur, ok := s.ctrl.Current(); ok {
			return s, push(addword.NewEdit(s.deps, cur))
		}
		return s, nil
	case "ctrl+d":
		s.confirmDelete = true
		return s, nil
	case "q":
		return s, s.finish()
	}

	switch s.ctrl.Status() {
	case sess.StatusIdle:
		return s.handleAnswerKey(key)
	case sess.StatusCorrect:
		if key == "enter" || key == "space" || key == " " {
			s.report(s.ctrl.Advance())
			s.sync()
		}
	}
	return s, nil
}

func (s *SessionScreen) handleAnswerKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		s.list.Move(-1)
		return s, nil
	case "down", "j":
		s.list.Move(1)
		return s, nil
	case "enter":
		if opt, ok := s.list.AtCursor(); ok {
			s.submit(opt.ID)
		}
		return s, nil
	}
	if n, err := strconv.Atoi(key); err == nil {
		if opt, ok := s.list.ByNumber(n); ok {
			s.list.Cursor = n - 1
			s.submit(opt.ID)
		}
	}
	return s, nil
}

func (s *SessionScreen) submit(optionID string) {
	if _, err := s.ctrl.Submit(optionID); err != nil {
		s.report(err)
		return
	}
	s.list.Chosen = optionID
	s.sync()
}

// report surfaces controller errors except the busy guard, which only
// means a key arrived while feedback was showing.
func (s *SessionScreen) report(err error) {
	if err == nil || errors.Is(err, sess.ErrBusy) {
		return
	}
	s.notice = err.Error()
}

// sync refreshes the option list from the controller. The cursor resets
// when a new item is presented; the chosen option is kept only while
// feedback is showing.
func (s *SessionScreen) sync() {
	cur, ok := s.ctrl.Current()
	if !ok {
		s.list = components.ChoiceList{}
		s.shown = false
		return
	}
	status := s.ctrl.Status()
	if !s.shown || cur.ID != s.shownID {
		s.list = components.ChoiceList{}
		s.shownID, s.shown = cur.ID, true
	}
	s.list.Options = s.ctrl.Options()
	s.list.Move(0)
	switch status {
	case sess.StatusCorrect:
		s.list.State = components.ChoicesCorrect
	case sess.StatusWrong:
		s.list.State = components.ChoicesWrong
	default:
		s.list.State = components.ChoicesOpen
		s.list.Chosen = ""
	}
}

func (s *SessionScreen) deleteCurrent() tea.Cmd {
	cur, ok := s.ctrl.Current()
	if !ok || s.items == nil {
		return nil
	}
	repo, id := s.items, cur.ID
	return func() tea.Msg {
		return itemDeletedMsg{ID: id, Err: repo.Delete(context.Background(), id)}
	}
}

// finish leaves the quiz through the summary screen.
func (s *SessionScreen) finish() tea.Cmd {
	p := s.ctrl.Progress()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(p)}
	}
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}
