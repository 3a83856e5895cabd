// Package addword is the form used to add a word pair or edit an existing item.
package addword

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/store"
	"github.com/abhisek/oulpan/internal/ui/components"
	"github.com/abhisek/oulpan/internal/ui/layout"
	"github.com/abhisek/oulpan/internal/ui/theme"
)

// ErrDuplicate is reported when the prompt already exists in the pool.
var ErrDuplicate = errors.New("a word with this prompt already exists")

const (
	fieldPrompt = iota
	fieldAnswer
	fieldTags
	fieldCount
)

// savedMsg reports the result of the async store write.
type savedMsg struct {
	Item item.Item
	Err  error
}

// AddWordScreen adds a word pair, or edits one when editing is set.
type AddWordScreen struct {
	ctrl  *session.Controller
	items store.ItemRepo

	editing *item.Item
	fields  [fieldCount]components.TextInput
	focus   int
	saving  bool
	errMsg  string
	added   int
}

var _ screen.Screen = (*AddWordScreen)(nil)
var _ screen.KeyHintProvider = (*AddWordScreen)(nil)

// New returns an empty add form.
func New(deps screen.Deps) *AddWordScreen {
	s := &AddWordScreen{ctrl: deps.Controller, items: deps.Items}
	s.fields[fieldPrompt] = components.NewTextInput("Word", "שָׁלוֹם", 200)
	s.fields[fieldAnswer] = components.NewTextInput("Translation", "bonjour", 200)
	s.fields[fieldTags] = components.NewTextInput("Tags (separated by ;)", "greetings", 200)
	return s
}

// NewEdit returns the form filled with it. Saving updates it in place.
func NewEdit(deps screen.Deps, it item.Item) *AddWordScreen {
	s := New(deps)
	s.editing = &it
	s.fields[fieldPrompt].SetValue(it.Prompt)
	s.fields[fieldAnswer].SetValue(it.Answer)
	s.fields[fieldTags].SetValue(strings.Join(it.Tags, "; "))
	if it.Kind == item.KindQuestion {
		// The answer of a question is a choice key and is not editable here.
		s.fields[fieldAnswer].Blur()
	}
	return s
}

func (s *AddWordScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *AddWordScreen) Title() string {
	if s.editing != nil {
		return "Edit"
	}
	return "Add word"
}

func (s *AddWordScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↓", Description: "Next field"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AddWordScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if s.editing != nil {
			s.ctrl.Replace(msg.Item)
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.ctrl.Add(msg.Item)
		s.added++
		s.errMsg = ""
		for i := range s.fields {
			s.fields[i].SetValue("")
		}
		return s, s.focusField(fieldPrompt)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return s, s.focusField((s.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return s, s.focusField((s.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if s.focus < fieldTags && s.fields[s.focus+1].Value() == "" && s.editing == nil {
				return s, s.focusField(s.focus + 1)
			}
			return s, s.save()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *AddWordScreen) focusField(i int) tea.Cmd {
	if s.editing != nil && s.editing.Kind == item.KindQuestion && i == fieldAnswer {
		i = (i + 1) % fieldCount
	}
	s.fields[s.focus].Blur()
	s.focus = i
	return s.fields[i].Focus()
}

// save validates the form and writes it to the store in the background.
func (s *AddWordScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	prompt := s.fields[fieldPrompt].Value()
	answer := s.fields[fieldAnswer].Value()
	tags := item.NewTags(strings.Split(s.fields[fieldTags].Value(), ";")...)

	if s.editing != nil && s.editing.Kind == item.KindQuestion {
		answer = s.editing.Answer
	}
	if prompt == "" || answer == "" {
		s.errMsg = "Both the word and its translation are required."
		return nil
	}
	if s.isDuplicate(prompt) {
		s.errMsg = ErrDuplicate.Error()
		return nil
	}

	s.saving = true
	repo := s.items
	if s.editing != nil {
		updated := *s.editing
		updated.Prompt, updated.Answer, updated.Tags = prompt, answer, tags
		patch := item.Patch{Prompt: &prompt, Answer: &answer, Tags: &tags}
		return func() tea.Msg {
			if err := repo.Update(context.Background(), updated.ID, patch); err != nil {
				logging.Error("update item", "id", updated.ID, "err", err)
				return savedMsg{Err: fmt.Errorf("save: %w", err)}
			}
			return savedMsg{Item: updated}
		}
	}

	it := item.Item{Kind: item.KindWord, Prompt: prompt, Answer: answer, Tags: tags}
	return func() tea.Msg {
		created, err := repo.Create(context.Background(), it)
		if err != nil {
			logging.Error("create item", "prompt", prompt, "err", err)
			return savedMsg{Err: fmt.Errorf("save: %w", err)}
		}
		logging.Info("item added", "id", created.ID)
		return savedMsg{Item: created}
	}
}

func (s *AddWordScreen) isDuplicate(prompt string) bool {
	key := item.PromptKey(prompt)
	for _, it := range s.ctrl.Items() {
		if s.editing != nil && it.ID == s.editing.ID {
			continue
		}
		if item.PromptKey(it.Prompt) == key {
			return true
		}
	}
	return false
}

func (s *AddWordScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	for i := range s.fields {
		if s.editing != nil && s.editing.Kind == item.KindQuestion && i == fieldAnswer {
			b.WriteString(theme.Dimmed.Render("Answer: " + s.editing.AnswerText()))
		} else {
			b.WriteString(s.fields[i].View())
		}
		b.WriteString("\n\n")
	}

	switch {
	case s.saving:
		b.WriteString(theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	case s.added > 0:
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Added %d so far.", s.added)))
	}

	form := lipgloss.NewStyle().Width(cw).Render(b.String())
	return layout.Center(form, width, height)
}
