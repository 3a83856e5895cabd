package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceMonotonicAcrossTypes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64 = -1
	for range 5 {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, int64(5), prev)
}

func TestSequenceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.db")
	ctx := context.Background()

	s1, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	for range 3 {
		_, err := s1.seq.Next(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, s1.Close())

	s2 := openStoreAt(t, path)
	n, err := s2.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestAnswerStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.Events()
	ctx := context.Background()

	stats, err := repo.AnswerStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Attempts)
	assert.Zero(t, stats.Accuracy())

	for _, correct := range []bool{true, false, true, true} {
		require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{
			SessionID: "s1", ItemID: 1, Mode: "learn", Prompt: "p", Expected: "e", Chosen: "c", Correct: correct,
		}))
	}

	stats, err = repo.AnswerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Attempts)
	assert.Equal(t, 3, stats.Correct)
	assert.InDelta(t, 0.75, stats.Accuracy(), 1e-9)
}

func TestQuerySessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.Events()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: id, Action: SessionStart, Mode: "learn"}))
		require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
			SessionID: id, Action: SessionEnd, Mode: "learn", ItemsAnswered: 10, CorrectAnswers: 7, DurationSecs: 60,
		}))
	}
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "wordgen", Success: true}))

	recs, err := repo.QuerySessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].SessionID)
	assert.Equal(t, "b", recs[1].SessionID)
	assert.Greater(t, recs[0].Sequence, recs[1].Sequence)
	assert.Equal(t, 7, recs[0].CorrectAnswers)
	assert.False(t, recs[0].Timestamp.IsZero())
}
