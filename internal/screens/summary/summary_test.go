package summary

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/router"
	"github.com/abhisek/oulpan/internal/session"
)

func testProgress() session.Progress {
	return session.Progress{
		Total:              20,
		MasteredOrAnswered: 8,
		Review:             3,
		MinMastery:         1,
		Mode:               queue.ModeLearn,
		Attempts:           14,
		Correct:            11,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	assert.Equal(t, "Session Summary", New(testProgress()).Title())
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testProgress()).View(80, 24)
	assert.Contains(t, view, "Answers: 14")
	assert.Contains(t, view, "Accuracy: 79%")
	assert.Contains(t, view, "3 words waiting for review")
}

func TestSummaryScreen_NoAttempts(t *testing.T) {
	s := New(session.Progress{Total: 2})
	assert.Zero(t, s.Accuracy())
	assert.Contains(t, s.View(80, 24), "No words waiting for review")
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{
		{Code: tea.KeyEnter},
		{Code: tea.KeyEscape},
	} {
		_, cmd := New(testProgress()).Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, router.PopScreenMsg{}, cmd())
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	assert.Len(t, New(testProgress()).KeyHints(), 2)
}
