package session

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/abhisek/oulpan/internal/choices"
	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/mastery"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/store"
)

// DefaultRetryDelay is how long wrong-answer feedback stays up before the
// same item can be answered again.
const DefaultRetryDelay = 900 * time.Millisecond

// Options configures a Controller.
type Options struct {
	// Policy is the learn-mode candidate rule.
	Policy queue.Policy

	// WrongPolicy decides what a wrong answer does to mastery.
	WrongPolicy mastery.WrongPolicy

	// OptionCount is the number of choices per word item.
	OptionCount int

	// AutoAdvance is the observation delay after a correct answer.
	// Zero means the UI must call Advance.
	AutoAdvance time.Duration

	// RetryDelay is the observation delay after a wrong answer.
	RetryDelay time.Duration

	Rand      *rand.Rand
	Clock     Clock
	Persister Persister
	Logger    *log.Logger
}

// Controller owns the pool, the queue and the feedback state of one
// learning session. All methods are safe for concurrent use; timer
// callbacks take the same lock as UI calls.
type Controller struct {
	mu sync.Mutex

	opts     Options
	selector queue.Selector
	sampler  *choices.Sampler
	logger   *log.Logger

	pool    *item.Pool
	q       *queue.Queue
	mode    queue.Mode
	phase   Phase
	status  Status
	current item.Item
	options []choices.Option
	outcome mastery.Outcome
	marked  bool

	timer Timer
	gen   uint64

	sessionID string
	started   time.Time
	attempts  int
	correct   int
}

// New returns a controller in the loading phase, in learn mode.
func New(opts Options) *Controller {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Persister == nil {
		opts.Persister = nopPersister{}
	}
	if opts.WrongPolicy == "" {
		opts.WrongPolicy = mastery.WrongFreeze
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		opts:     opts,
		selector: queue.SelectorFor(opts.Policy),
		sampler:  choices.NewSampler(opts.OptionCount, opts.Rand),
		logger:   logger.WithPrefix("session"),
		mode:     queue.ModeLearn,
		phase:    PhaseLoading,
	}
}

// Load fills the pool from the store and presents the first item. On
// failure the controller moves to PhaseUnavailable and builds nothing.
func (c *Controller) Load(ctx context.Context, lister Lister) error {
	items, err := lister.ListAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()

	if err != nil {
		c.phase = PhaseUnavailable
		c.pool = nil
		c.q = nil
		c.clearCurrentLocked()
		c.logger.Error("load failed", "err", err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	c.pool = item.NewPool(items)
	c.q = nil
	if c.sessionID == "" {
		c.sessionID = uuid.New().String()
		c.started = time.Now()
		c.opts.Persister.RecordSession(store.SessionEventData{
			SessionID: c.sessionID,
			Action:    store.SessionStart,
			Mode:      string(c.mode),
		})
	}
	c.logger.Debug("pool loaded", "items", c.pool.Len(), "session", c.sessionID)
	c.nextLocked()
	return nil
}

// Reset discards the queue and any pending feedback, then rebuilds under
// the current mode.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return
	}
	c.cancelTimerLocked()
	c.q = nil
	c.nextLocked()
}

// Teardown cancels pending timers and records the end of the session.
// The controller can be loaded again afterwards.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
	if c.sessionID == "" {
		return
	}
	c.opts.Persister.RecordSession(store.SessionEventData{
		SessionID:      c.sessionID,
		Action:         store.SessionEnd,
		Mode:           string(c.mode),
		ItemsAnswered:  c.attempts,
		CorrectAnswers: c.correct,
		DurationSecs:   int(time.Since(c.started).Seconds()),
	})
	c.logger.Debug("session ended", "session", c.sessionID, "attempts", c.attempts, "correct", c.correct)
	c.sessionID = ""
	c.attempts, c.correct = 0, 0
}

// SessionID returns the id of the running session, empty before Load.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Phase returns the coarse session state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Status returns the feedback state of the current item.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Mode returns the active mode.
func (c *Controller) Mode() queue.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Current returns the item being presented.
func (c *Controller) Current() (item.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.phase == PhaseActive
}

// Options returns the option set for the current item.
func (c *Controller) Options() []choices.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.options)
}

// MarkedForReview reports whether the current item was flagged with
// MarkForReview since it was presented.
func (c *Controller) MarkedForReview() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marked
}

// QueueIDs returns the remaining queue, head first.
func (c *Controller) QueueIDs() []item.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.IDs()
}

// Submit answers the current item with the option whose ID is optionID.
// It is rejected with ErrBusy unless the status is idle, so a pending
// feedback timer can never see two answers for one head.
func (c *Controller) Submit(optionID string) (mastery.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseActive {
		return mastery.Incorrect, ErrNoCurrentItem
	}
	if c.status != StatusIdle {
		return mastery.Incorrect, ErrBusy
	}
	opt, ok := choices.Find(c.options, optionID)
	if !ok {
		return mastery.Incorrect, fmt.Errorf("%w: %q", ErrInvalidChoice, optionID)
	}

	res, err := mastery.Process(c.pool, c.current, opt.Key, c.opts.WrongPolicy)
	if err != nil {
		return mastery.Incorrect, err
	}
	c.current = res.Item
	c.outcome = res.Outcome
	c.attempts++
	c.opts.Persister.Persist(res.Item.ID, res.Patch)
	c.opts.Persister.RecordAnswer(store.AnswerEventData{
		SessionID:    c.sessionID,
		ItemID:       int64(res.Item.ID),
		Mode:         string(c.mode),
		Prompt:       res.Item.Prompt,
		Expected:     res.Item.AnswerText(),
		Chosen:       opt.Text,
		Correct:      res.Outcome == mastery.Correct,
		MasteryAfter: res.Item.MasteryCount,
	})

	if res.Outcome == mastery.Correct {
		c.correct++
		c.status = StatusCorrect
		if c.opts.AutoAdvance > 0 {
			c.scheduleLocked(c.opts.AutoAdvance, c.advanceLocked)
		}
	} else {
		c.status = StatusWrong
		c.scheduleLocked(c.opts.RetryDelay, c.retryLocked)
	}
	c.logger.Debug("answer", "item", res.Item.ID, "outcome", res.Outcome, "mastery", res.Item.MasteryCount)
	return res.Outcome, nil
}

// Advance moves past a correctly answered item.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return ErrNoCurrentItem
	}
	if c.status != StatusCorrect {
		return ErrBusy
	}
	c.advanceLocked()
	return nil
}

// SetMode switches mode, discarding the queue and any pending feedback.
func (c *Controller) SetMode(m queue.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
	c.mode = m
	c.q = nil
	if c.pool == nil {
		return
	}
	c.logger.Debug("mode switch", "mode", m)
	c.nextLocked()
}

// MarkForReview flags the current item without leaving it.
func (c *Controller) MarkForReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return ErrNoCurrentItem
	}
	c.setReviewLocked(c.current.ID, true)
	c.marked = true
	return nil
}

// MarkAndContinue flags the current item and moves to the next one.
func (c *Controller) MarkAndContinue() error {
	return c.skip(true)
}

// ContinueClean clears the review flag of the current item and moves on.
func (c *Controller) ContinueClean() error {
	return c.skip(false)
}

func (c *Controller) skip(review bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return ErrNoCurrentItem
	}
	if c.status == StatusWrong {
		return ErrBusy
	}
	if c.current.NeedsReview != review {
		c.setReviewLocked(c.current.ID, review)
	}
	c.advanceLocked()
	return nil
}

// ClearReview removes an item from the review list.
func (c *Controller) ClearReview(id item.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.pool.Get(id)
	if !ok {
		return false
	}
	if it.NeedsReview {
		c.setReviewLocked(id, false)
	}
	return true
}

// ReviewItems returns the items currently flagged for review.
func (c *Controller) ReviewItems() []item.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool.Filter(func(it item.Item) bool { return it.NeedsReview })
}

// Items returns every item in the pool.
func (c *Controller) Items() []item.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool.Items()
}

// Add puts a newly created item into the pool. It joins the next queue
// build; an empty session starts presenting it right away.
func (c *Controller) Add(it item.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return
	}
	c.pool.Put(it)
	if c.phase == PhaseEmpty {
		c.q = nil
		c.nextLocked()
	}
}

// Forget drops a deleted item from the pool and the queue. If it was
// being presented, the session moves on to the next item.
func (c *Controller) Forget(id item.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil || !c.pool.Remove(id) {
		return
	}
	c.q.Remove(id)
	if c.phase == PhaseActive && c.current.ID == id {
		c.cancelTimerLocked()
		c.nextLocked()
		return
	}
	if c.phase == PhaseActive {
		// Distractors may reference the removed item.
		if _, ok := choices.Find(c.options, strconv.FormatInt(int64(id), 10)); ok && c.status == StatusIdle {
			c.options = c.sampler.Sample(c.pool, c.current)
		}
	}
}

// Replace applies an edit made elsewhere to the pool and, when it is the
// item being presented, to the current card.
func (c *Controller) Replace(it item.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pool.Has(it.ID) {
		return
	}
	c.pool.Put(it)
	if c.phase == PhaseActive && c.current.ID == it.ID {
		c.current = it
		// Correct feedback keeps the options the learner just answered.
		if c.status == StatusIdle || (c.status == StatusWrong && c.optionsStaleLocked()) {
			c.options = c.sampler.Sample(c.pool, it)
		}
	}
}

// optionsStaleLocked reports whether the shown options no longer contain
// the current item's answer.
func (c *Controller) optionsStaleLocked() bool {
	for _, o := range c.options {
		if o.Key == c.current.Answer {
			return false
		}
	}
	return true
}

// ResetProgress zeroes mastery and flags across the pool and rebuilds.
// The store side is a batched collaborator call made by the caller.
func (c *Controller) ResetProgress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return
	}
	c.cancelTimerLocked()
	zero := item.ClearProgress()
	for _, it := range c.pool.Items() {
		c.pool.Update(it.ID, zero)
	}
	c.q = nil
	c.nextLocked()
}

// Progress returns the progress snapshot under the configured policy.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := Snapshot(c.pool, c.opts.Policy)
	p.Mode = c.mode
	p.QueueRemaining = c.q.Len()
	p.Attempts = c.attempts
	p.Correct = c.correct
	return p
}

func (c *Controller) setReviewLocked(id item.ID, review bool) {
	patch := item.Patch{NeedsReview: item.Ptr(review)}
	updated, ok := c.pool.Update(id, patch)
	if !ok {
		return
	}
	if c.current.ID == id {
		c.current = updated
	}
	c.opts.Persister.Persist(id, patch)
}

func (c *Controller) advanceLocked() {
	c.cancelTimerLocked()
	c.q.Pop()
	c.nextLocked()
}

func (c *Controller) retryLocked() {
	c.timer = nil
	if cur, ok := c.pool.Get(c.current.ID); ok {
		c.current = cur
	}
	if c.optionsStaleLocked() {
		c.options = c.sampler.Sample(c.pool, c.current)
	}
	c.status = StatusIdle
}

// nextLocked presents the queue head, skipping entries whose item was
// deleted, and rebuilds once when the queue runs dry.
func (c *Controller) nextLocked() {
	if c.presentHeadLocked() {
		return
	}
	c.q = queue.Build(c.pool, c.mode, c.selector, c.opts.Rand)
	if c.presentHeadLocked() {
		return
	}

	c.clearCurrentLocked()
	switch {
	case c.pool.Len() == 0:
		c.phase = PhaseEmpty
	case c.mode == queue.ModeReview:
		c.phase = PhaseReviewComplete
		c.logger.Debug("review complete")
	default:
		c.phase = PhaseEmpty
	}
}

func (c *Controller) presentHeadLocked() bool {
	for {
		head, ok := c.q.Head()
		if !ok {
			return false
		}
		cur, ok := c.pool.Get(head.ID)
		if !ok {
			c.q.Pop()
			continue
		}
		c.current = cur
		c.options = c.sampler.Sample(c.pool, cur)
		c.status = StatusIdle
		c.phase = PhaseActive
		c.marked = false
		return true
	}
}

func (c *Controller) clearCurrentLocked() {
	c.current = item.Item{}
	c.options = nil
	c.status = StatusIdle
	c.marked = false
}

// scheduleLocked arms a single pending timer. The generation check drops
// callbacks from timers that were cancelled after they started firing.
func (c *Controller) scheduleLocked(d time.Duration, f func()) {
	c.cancelTimerLocked()
	gen := c.gen
	c.timer = c.opts.Clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		c.timer = nil
		f()
	})
}

func (c *Controller) cancelTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
