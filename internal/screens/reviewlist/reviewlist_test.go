package reviewlist

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/session"
)

type staticLister []item.Item

func (l staticLister) ListAll(context.Context) ([]item.Item, error) {
	return l, nil
}

func newController(t *testing.T) *session.Controller {
	t.Helper()
	ctrl := session.New(session.Options{Clock: session.NewManualClock()})
	require.NoError(t, ctrl.Load(context.Background(), staticLister{
		{ID: 1, Prompt: "אֶחָד", Answer: "un", NeedsReview: true, ErrorCount: 2},
		{ID: 2, Prompt: "שְׁתַּיִם", Answer: "deux"},
		{ID: 3, Prompt: "שָׁלוֹשׁ", Answer: "trois", NeedsReview: true},
	}))
	return ctrl
}

func TestListsFlaggedItems(t *testing.T) {
	s := New(newController(t))
	require.Len(t, s.items, 2)
	assert.Equal(t, "⚑ 2  ", s.Status())

	view := s.View(80, 20)
	assert.Contains(t, view, "un")
	assert.Contains(t, view, "(2 missed)")
	assert.NotContains(t, view, "deux")
}

func TestClearFlag(t *testing.T) {
	ctrl := newController(t)
	s := New(ctrl)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
	s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	require.Len(t, s.items, 1)
	assert.Equal(t, item.ID(1), s.items[0].ID)
	assert.Zero(t, s.selected)
	assert.Len(t, ctrl.ReviewItems(), 1)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Empty(t, s.items)
	assert.Contains(t, s.View(80, 20), "Nothing flagged")
}

func TestRefreshReloads(t *testing.T) {
	ctrl := newController(t)
	s := New(ctrl)
	ctrl.ClearReview(1)
	s.Update(screen.RefreshMsg{})
	assert.Len(t, s.items, 1)
}

func TestEscPops(t *testing.T) {
	s := New(newController(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
