package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/choices"
	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/mastery"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/store"
)

type staticLister struct {
	items []item.Item
	err   error
}

func (l staticLister) ListAll(context.Context) ([]item.Item, error) {
	return l.items, l.err
}

type recordingPersister struct {
	mu       sync.Mutex
	patches  map[item.ID]item.Patch
	answers  []store.AnswerEventData
	sessions []store.SessionEventData
}

func newRecorder() *recordingPersister {
	return &recordingPersister{patches: make(map[item.ID]item.Patch)}
}

func (r *recordingPersister) Persist(id item.ID, p item.Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches[id] = r.patches[id].Merge(p)
}

func (r *recordingPersister) RecordAnswer(d store.AnswerEventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, d)
}

func (r *recordingPersister) RecordSession(d store.SessionEventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, d)
}

func words(mastery ...int) []item.Item {
	out := make([]item.Item, len(mastery))
	for i, m := range mastery {
		out[i] = item.Item{
			ID:           item.ID(i + 1),
			Kind:         item.KindWord,
			Prompt:       fmt.Sprintf("he-%d", i+1),
			Answer:       fmt.Sprintf("fr-%d", i+1),
			MasteryCount: m,
		}
	}
	return out
}

type fixture struct {
	c     *Controller
	clock *ManualClock
	rec   *recordingPersister
}

func newFixture(t *testing.T, items []item.Item, mutate func(*Options)) fixture {
	t.Helper()
	clock := NewManualClock()
	rec := newRecorder()
	opts := Options{
		Policy:    queue.PolicyLevel,
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Clock:     clock,
		Persister: rec,
	}
	if mutate != nil {
		mutate(&opts)
	}
	c := New(opts)
	require.NoError(t, c.Load(context.Background(), staticLister{items: items}))
	return fixture{c: c, clock: clock, rec: rec}
}

func optionWhere(t *testing.T, c *Controller, correct bool) choices.Option {
	t.Helper()
	cur, ok := c.Current()
	require.True(t, ok)
	for _, o := range c.Options() {
		if (o.Key == cur.Answer) == correct {
			return o
		}
	}
	t.Fatalf("no option with correct=%v", correct)
	return choices.Option{}
}

func sortedIDs(ids []item.ID) []item.ID {
	out := append([]item.ID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLoad_StoreUnavailable(t *testing.T) {
	c := New(Options{Clock: NewManualClock()})
	assert.Equal(t, PhaseLoading, c.Phase())

	err := c.Load(context.Background(), staticLister{err: errors.New("disk on fire")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, PhaseUnavailable, c.Phase())

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Empty(t, c.QueueIDs())

	_, err = c.Submit("1")
	assert.True(t, errors.Is(err, ErrNoCurrentItem))
}

func TestLoad_EmptyPool(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.Equal(t, PhaseEmpty, f.c.Phase())
	_, ok := f.c.Current()
	assert.False(t, ok)
	assert.Equal(t, StatusIdle, f.c.Status())
}

func TestEndToEnd_LevelSweep(t *testing.T) {
	f := newFixture(t, words(0, 0, 1), nil)
	c := f.c

	assert.Equal(t, PhaseActive, c.Phase())
	assert.Equal(t, []item.ID{1, 2}, sortedIDs(c.QueueIDs()))

	first, _ := c.Current()
	outcome, err := c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	assert.Equal(t, mastery.Correct, outcome)
	assert.Equal(t, StatusCorrect, c.Status())

	// No auto-advance configured: the head stays until Advance.
	cur, _ := c.Current()
	assert.Equal(t, first.ID, cur.ID)
	assert.Equal(t, 1, cur.MasteryCount)

	require.NoError(t, c.Advance())
	second, _ := c.Current()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []item.ID{second.ID}, c.QueueIDs())

	_, err = c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	require.NoError(t, c.Advance())

	assert.Equal(t, []item.ID{1, 2, 3}, sortedIDs(c.QueueIDs()))
	assert.Equal(t, 1, c.Progress().MinMastery)
	assert.Equal(t, StatusIdle, c.Status())
}

func TestSubmit_BusyIsNoop(t *testing.T) {
	f := newFixture(t, words(0, 0, 0, 0), nil)
	c := f.c

	_, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)
	require.Equal(t, StatusWrong, c.Status())

	items := c.Items()
	ids := c.QueueIDs()
	attempts := len(f.rec.answers)

	for _, o := range c.Options() {
		_, err := c.Submit(o.ID)
		assert.True(t, errors.Is(err, ErrBusy))
	}
	assert.Equal(t, items, c.Items())
	assert.Equal(t, ids, c.QueueIDs())
	assert.Len(t, f.rec.answers, attempts)

	assert.True(t, errors.Is(c.Advance(), ErrBusy))
}

func TestSubmit_WrongRetriesSameItem(t *testing.T) {
	f := newFixture(t, words(2, 2, 2, 2), nil)
	c := f.c

	head, _ := c.Current()
	opts := c.Options()
	outcome, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)
	assert.Equal(t, mastery.Incorrect, outcome)

	cur, _ := c.Current()
	assert.True(t, cur.NeedsReview)
	assert.Equal(t, 2, cur.MasteryCount)

	f.clock.Advance(DefaultRetryDelay - time.Millisecond)
	assert.Equal(t, StatusWrong, c.Status())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, StatusIdle, c.Status())
	cur, _ = c.Current()
	assert.Equal(t, head.ID, cur.ID)
	assert.Equal(t, opts, c.Options())
	assert.Equal(t, head.ID, c.QueueIDs()[0])

	_, err = c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	cur, _ = c.Current()
	assert.False(t, cur.NeedsReview)
	assert.Equal(t, 3, cur.MasteryCount)
}

func TestSubmit_InvalidChoice(t *testing.T) {
	f := newFixture(t, words(0, 0), nil)

	_, err := f.c.Submit("no-such-option")
	assert.True(t, errors.Is(err, ErrInvalidChoice))
	assert.Equal(t, StatusIdle, f.c.Status())
	assert.Empty(t, f.rec.patches)
}

func TestAutoAdvance(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), func(o *Options) { o.AutoAdvance = 2 * time.Second })
	c := f.c

	head, _ := c.Current()
	_, err := c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, StatusIdle, c.Status())
	next, _ := c.Current()
	assert.NotEqual(t, head.ID, next.ID)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestSetMode_CancelsTimerAndRebuilds(t *testing.T) {
	items := words(0, 0, 0)
	items[2].NeedsReview = true
	f := newFixture(t, items, nil)
	c := f.c

	_, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.clock.Pending())

	c.SetMode(queue.ModeReview)
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, StatusIdle, c.Status())
	assert.Equal(t, queue.ModeReview, c.Mode())

	for _, id := range c.QueueIDs() {
		it, _ := c.pool.Get(id)
		assert.True(t, it.NeedsReview)
	}

	// A stale fire must not touch the new queue.
	ids := c.QueueIDs()
	f.clock.Advance(time.Hour)
	assert.Equal(t, ids, c.QueueIDs())
}

func TestReviewExhaustion(t *testing.T) {
	f := newFixture(t, words(0, 1, 2), nil)
	c := f.c

	c.SetMode(queue.ModeReview)
	assert.Equal(t, PhaseReviewComplete, c.Phase())
	assert.Empty(t, c.QueueIDs())
	_, ok := c.Current()
	assert.False(t, ok)

	c.SetMode(queue.ModeLearn)
	assert.Equal(t, PhaseActive, c.Phase())
}

func TestReviewMode_DrainsToComplete(t *testing.T) {
	items := words(0, 0, 0, 0)
	items[1].NeedsReview = true
	f := newFixture(t, items, nil)
	c := f.c

	c.SetMode(queue.ModeReview)
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, item.ID(2), cur.ID)

	_, err := c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	require.NoError(t, c.Advance())
	assert.Equal(t, PhaseReviewComplete, c.Phase())
}

func TestForget_HeadMidQueue(t *testing.T) {
	f := newFixture(t, words(0, 0, 0, 0), nil)
	c := f.c

	head, _ := c.Current()
	c.Forget(head.ID)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.NotEqual(t, head.ID, cur.ID)
	assert.NotContains(t, c.QueueIDs(), head.ID)
	for _, o := range c.Options() {
		assert.NotEqual(t, fmt.Sprint(head.ID), o.ID)
	}

	for c.Phase() == PhaseActive && len(c.QueueIDs()) > 0 {
		assert.NotPanics(t, func() {
			_, err := c.Submit(optionWhere(t, c, true).ID)
			require.NoError(t, err)
			require.NoError(t, c.Advance())
		})
		if c.Progress().MinMastery > 0 {
			break
		}
	}
	assert.NotContains(t, c.QueueIDs(), head.ID)
	assert.Equal(t, 3, c.Progress().Total)
}

func TestForget_WhileFeedbackPending(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), nil)
	c := f.c

	head, _ := c.Current()
	_, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)

	c.Forget(head.ID)
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, StatusIdle, c.Status())

	f.clock.Advance(time.Hour)
	cur, _ := c.Current()
	assert.NotEqual(t, head.ID, cur.ID)
}

func TestForget_LastItem(t *testing.T) {
	f := newFixture(t, words(0), nil)
	head, _ := f.c.Current()
	f.c.Forget(head.ID)
	assert.Equal(t, PhaseEmpty, f.c.Phase())
}

func TestPersistence(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), nil)
	c := f.c
	require.Len(t, f.rec.sessions, 1)
	assert.Equal(t, store.SessionStart, f.rec.sessions[0].Action)
	assert.NotEmpty(t, c.SessionID())

	head, _ := c.Current()
	_, err := c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)

	patch := f.rec.patches[head.ID]
	require.NotNil(t, patch.MasteryCount)
	assert.Equal(t, 1, *patch.MasteryCount)
	assert.True(t, *patch.Answered)
	require.Len(t, f.rec.answers, 1)
	assert.True(t, f.rec.answers[0].Correct)
	assert.Equal(t, c.SessionID(), f.rec.answers[0].SessionID)

	c.Teardown()
	require.Len(t, f.rec.sessions, 2)
	end := f.rec.sessions[1]
	assert.Equal(t, store.SessionEnd, end.Action)
	assert.Equal(t, 1, end.ItemsAnswered)
	assert.Equal(t, 1, end.CorrectAnswers)
}

func TestMarkForReview(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), nil)
	c := f.c

	head, _ := c.Current()
	require.NoError(t, c.MarkForReview())
	assert.True(t, c.MarkedForReview())
	cur, _ := c.Current()
	assert.Equal(t, head.ID, cur.ID)
	assert.True(t, cur.NeedsReview)
	assert.Len(t, c.ReviewItems(), 1)

	require.NoError(t, c.ContinueClean())
	assert.False(t, c.MarkedForReview())
	assert.Empty(t, c.ReviewItems())
	assert.False(t, *f.rec.patches[head.ID].NeedsReview)
}

func TestMarkAndContinue(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), nil)
	c := f.c

	head, _ := c.Current()
	require.NoError(t, c.MarkAndContinue())
	next, _ := c.Current()
	assert.NotEqual(t, head.ID, next.ID)

	review := c.ReviewItems()
	require.Len(t, review, 1)
	assert.Equal(t, head.ID, review[0].ID)

	assert.True(t, c.ClearReview(head.ID))
	assert.Empty(t, c.ReviewItems())
	assert.False(t, c.ClearReview(99))
}

func TestSkip_RejectedDuringWrongFeedback(t *testing.T) {
	f := newFixture(t, words(0, 0), nil)
	_, err := f.c.Submit(optionWhere(t, f.c, false).ID)
	require.NoError(t, err)
	assert.True(t, errors.Is(f.c.MarkAndContinue(), ErrBusy))
	assert.True(t, errors.Is(f.c.ContinueClean(), ErrBusy))
}

func TestAdd_WakesEmptySession(t *testing.T) {
	f := newFixture(t, nil, nil)
	require.Equal(t, PhaseEmpty, f.c.Phase())

	f.c.Add(item.Item{ID: 7, Kind: item.KindWord, Prompt: "שלום", Answer: "bonjour"})
	assert.Equal(t, PhaseActive, f.c.Phase())
	cur, _ := f.c.Current()
	assert.Equal(t, item.ID(7), cur.ID)
	assert.Len(t, f.c.Options(), 1)
}

func TestReplace_UpdatesCurrent(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), nil)
	c := f.c

	head, _ := c.Current()
	edited := head
	edited.Answer = "corrigé"
	c.Replace(edited)

	cur, _ := c.Current()
	assert.Equal(t, "corrigé", cur.Answer)
	_, err := c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, c.Status())
}

func TestReplace_DuringWrongFeedbackResamples(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), func(o *Options) { o.RetryDelay = time.Second })
	c := f.c

	_, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)
	require.Equal(t, StatusWrong, c.Status())

	head, _ := c.Current()
	edited := head
	edited.Answer = "corrigé"
	c.Replace(edited)

	f.clock.Advance(time.Second)
	require.Equal(t, StatusIdle, c.Status())
	_, err = c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, c.Status())
}

func TestRetry_ResamplesAfterPoolEdit(t *testing.T) {
	f := newFixture(t, words(0, 0, 0), func(o *Options) { o.RetryDelay = time.Second })
	c := f.c

	_, err := c.Submit(optionWhere(t, c, false).ID)
	require.NoError(t, err)

	// An answer change that reaches the pool directly.
	head, _ := c.Current()
	c.mu.Lock()
	c.pool.Update(head.ID, item.Patch{Answer: item.Ptr("neuf")})
	c.mu.Unlock()

	f.clock.Advance(time.Second)
	_, err = c.Submit(optionWhere(t, c, true).ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, c.Status())
}

func TestResetProgress(t *testing.T) {
	items := words(3, 1, 2)
	items[0].NeedsReview = true
	items[1].Answered = true
	f := newFixture(t, items, nil)
	c := f.c

	c.ResetProgress()
	for _, it := range c.Items() {
		assert.Zero(t, it.MasteryCount)
		assert.False(t, it.NeedsReview)
		assert.False(t, it.Answered)
	}
	assert.Len(t, c.QueueIDs(), 3)
}

func TestProgress_Policies(t *testing.T) {
	items := words(1, 1, 2, 3)
	items[0].NeedsReview = true
	items[2].Answered = true

	level := newFixture(t, items, nil).c.Progress()
	assert.Equal(t, 4, level.Total)
	assert.Equal(t, 2, level.MasteredOrAnswered)
	assert.Equal(t, 7, level.TotalMastery)
	assert.Equal(t, 1, level.Review)
	assert.Equal(t, queue.ModeLearn, level.Mode)
	assert.Equal(t, 2, level.QueueRemaining)
	assert.InDelta(t, 0.5, level.Percent(), 1e-9)

	coverage := newFixture(t, items, func(o *Options) { o.Policy = queue.PolicyCoverage }).c.Progress()
	assert.Equal(t, 1, coverage.MasteredOrAnswered)
	assert.Equal(t, 3, coverage.QueueRemaining)
}

func TestProgress_TotalMasterySurvivesTierClear(t *testing.T) {
	f := newFixture(t, words(0, 0), nil)
	for range 2 {
		_, err := f.c.Submit(optionWhere(t, f.c, true).ID)
		require.NoError(t, err)
		require.NoError(t, f.c.Advance())
	}

	p := f.c.Progress()
	assert.Equal(t, 1, p.MinMastery)
	assert.Equal(t, 0, p.MasteredOrAnswered, "tier counter restarts")
	assert.Equal(t, 2, p.TotalMastery)
}

func TestWrongPolicyDecrement(t *testing.T) {
	f := newFixture(t, words(2, 2), func(o *Options) { o.WrongPolicy = mastery.WrongDecrement })
	_, err := f.c.Submit(optionWhere(t, f.c, false).ID)
	require.NoError(t, err)
	cur, _ := f.c.Current()
	assert.Equal(t, 1, cur.MasteryCount)
}

func TestManualClock_StopAndOrder(t *testing.T) {
	clock := NewManualClock()
	var fired []int
	clock.AfterFunc(3*time.Second, func() { fired = append(fired, 3) })
	t1 := clock.AfterFunc(time.Second, func() { fired = append(fired, 1) })
	clock.AfterFunc(2*time.Second, func() { fired = append(fired, 2) })

	assert.True(t, t1.Stop())
	assert.False(t, t1.Stop())
	clock.Advance(5 * time.Second)
	assert.Equal(t, []int{2, 3}, fired)
	assert.Equal(t, 0, clock.Pending())
}
