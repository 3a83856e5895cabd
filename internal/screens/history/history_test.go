package history

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/store"
)

func openEvents(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.Events()
}

func TestEmptyHistory(t *testing.T) {
	s := New(openEvents(t))
	assert.Contains(t, s.View(80, 20), "Loading")

	s.Update(s.Init()())
	assert.True(t, s.loaded)
	assert.Contains(t, s.View(80, 20), "No sessions yet")
}

func TestListsSessions(t *testing.T) {
	events := openEvents(t)
	ctx := context.Background()
	for _, d := range []store.SessionEventData{
		{SessionID: "a", Action: store.SessionEnd, Mode: "learn", ItemsAnswered: 10, CorrectAnswers: 7, DurationSecs: 95},
		{SessionID: "b", Action: store.SessionEnd, Mode: "review", ItemsAnswered: 4, CorrectAnswers: 4, DurationSecs: 30},
	} {
		require.NoError(t, events.AppendSessionEvent(ctx, d))
	}
	require.NoError(t, events.AppendAnswerEvent(ctx, store.AnswerEventData{SessionID: "a", Correct: true}))

	s := New(events)
	s.Update(s.Init()())
	require.Len(t, s.sessions, 2)

	view := s.View(100, 20)
	assert.Contains(t, view, "1:35")
	assert.Contains(t, view, "70% correct")
	assert.Contains(t, view, "All time: 1 answers, 100% correct")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
}

func TestLoadError(t *testing.T) {
	s := New(openEvents(t))
	s.Update(historyLoadedMsg{Err: assert.AnError})
	assert.Contains(t, s.View(80, 20), assert.AnError.Error())
}
