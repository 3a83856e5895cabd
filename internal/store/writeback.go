package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"

	"github.com/abhisek/oulpan/internal/item"
)

// WriteBehindConfig holds retry and sweep settings for WriteBehind.
type WriteBehindConfig struct {
	MaxAttempts   int
	InitialWait   time.Duration
	MaxWait       time.Duration
	Multiplier    float64
	WriteTimeout  time.Duration
	FlushInterval time.Duration
	QueueSize     int
	Logger        *log.Logger
}

// DefaultWriteBehindConfig returns sensible defaults.
func DefaultWriteBehindConfig() WriteBehindConfig {
	return WriteBehindConfig{
		MaxAttempts:   4,
		InitialWait:   100 * time.Millisecond,
		MaxWait:       2 * time.Second,
		Multiplier:    2.0,
		WriteTimeout:  5 * time.Second,
		FlushInterval: 30 * time.Second,
		QueueSize:     256,
	}
}

type writeOp struct {
	id      item.ID
	patch   item.Patch
	version uint64
	answer  *AnswerEventData
	session *SessionEventData
}

// WriteBehind persists session changes off the caller's goroutine. A
// worker applies writes in order with exponential backoff. Writes that
// exhaust their retries are parked, merged per item so the newest state
// wins, and swept periodically until they succeed.
type WriteBehind struct {
	items  ItemRepo
	events EventRepo
	cfg    WriteBehindConfig
	logger *log.Logger

	ops  chan writeOp
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// applyMu orders item writes between the worker and the sweep.
	applyMu sync.Mutex

	mu           sync.Mutex
	closed       bool
	queued       int
	version      uint64
	parked       map[item.ID]parkedPatch
	parkedEvents []writeOp

	sched *gocron.Scheduler
}

// parkedPatch is the merged state of failed or overflowed writes for one
// item. version is the newest write folded in.
type parkedPatch struct {
	patch   item.Patch
	version uint64
}

// NewWriteBehind starts the worker and the sweep job. events may be nil.
func NewWriteBehind(items ItemRepo, events EventRepo, cfg WriteBehindConfig) (*WriteBehind, error) {
	def := DefaultWriteBehindConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialWait <= 0 {
		cfg.InitialWait = def.InitialWait
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &WriteBehind{
		items:  items,
		events: events,
		cfg:    cfg,
		logger: logger.WithPrefix("writeback"),
		ops:    make(chan writeOp, cfg.QueueSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		parked: make(map[item.ID]parkedPatch),
	}

	w.sched = gocron.NewScheduler(time.UTC)
	if _, err := w.sched.Every(cfg.FlushInterval).WaitForSchedule().SingletonMode().Do(w.Flush); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	w.sched.StartAsync()

	go w.run()
	return w, nil
}

// Persist queues a partial item update. It never blocks.
func (w *WriteBehind) Persist(id item.ID, patch item.Patch) {
	if patch.IsEmpty() {
		return
	}
	w.enqueue(writeOp{id: id, patch: patch})
}

// RecordAnswer queues an answer event.
func (w *WriteBehind) RecordAnswer(data AnswerEventData) {
	if w.events == nil {
		return
	}
	w.enqueue(writeOp{answer: &data})
}

// RecordSession queues a session event.
func (w *WriteBehind) RecordSession(data SessionEventData) {
	if w.events == nil {
		return
	}
	w.enqueue(writeOp{session: &data})
}

func (w *WriteBehind) enqueue(op writeOp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("write after close dropped", "item", op.id)
		return
	}
	w.version++
	op.version = w.version
	select {
	case w.ops <- op:
		w.queued++
	default:
		// Queue full: park it for the next sweep instead of blocking.
		w.parkLocked(op)
	}
}

// Pending returns the number of queued and parked writes.
func (w *WriteBehind) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queued + len(w.parked) + len(w.parkedEvents)
}

func (w *WriteBehind) run() {
	defer close(w.done)
	for op := range w.ops {
		w.process(op)
	}
}

func (w *WriteBehind) process(op writeOp) {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	w.mu.Lock()
	w.queued--
	_, blocked := w.parked[op.id]
	if op.answer == nil && op.session == nil && blocked {
		// An older write for this item is parked; writing this one now
		// would let the sweep overwrite it with stale values later.
		w.parkLocked(op)
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	err := w.applyWithRetry(op)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		w.logger.Debug("item gone, write dropped", "item", op.id)
		return
	}
	w.logger.Error("write failed, parked", "item", op.id, "err", err)
	w.mu.Lock()
	w.parkLocked(op)
	w.mu.Unlock()
}

func (w *WriteBehind) parkLocked(op writeOp) {
	if op.answer != nil || op.session != nil {
		w.parkedEvents = append(w.parkedEvents, op)
		return
	}
	cur, ok := w.parked[op.id]
	switch {
	case !ok:
		w.parked[op.id] = parkedPatch{patch: op.patch, version: op.version}
	case op.version > cur.version:
		w.parked[op.id] = parkedPatch{patch: cur.patch.Merge(op.patch), version: op.version}
	default:
		// op is older than what is parked; parked fields win.
		w.parked[op.id] = parkedPatch{patch: op.patch.Merge(cur.patch), version: cur.version}
	}
}

func (w *WriteBehind) applyWithRetry(op writeOp) error {
	var lastErr error
	for attempt := range w.cfg.MaxAttempts {
		err := w.apply(op)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			return err
		}

		if attempt == w.cfg.MaxAttempts-1 {
			break
		}
		wait := w.backoff(attempt)
		w.logger.Warn("write failed, retrying", "item", op.id, "attempt", attempt+1, "wait", wait, "err", err)
		select {
		case <-w.ctx.Done():
			return lastErr
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (w *WriteBehind) apply(op writeOp) error {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.WriteTimeout)
	defer cancel()
	switch {
	case op.answer != nil:
		return w.events.AppendAnswerEvent(ctx, *op.answer)
	case op.session != nil:
		return w.events.AppendSessionEvent(ctx, *op.session)
	default:
		return w.items.Update(ctx, op.id, op.patch)
	}
}

// backoff computes the wait duration for the given attempt.
func (w *WriteBehind) backoff(attempt int) time.Duration {
	wait := float64(w.cfg.InitialWait) * math.Pow(w.cfg.Multiplier, float64(attempt))
	if wait > float64(w.cfg.MaxWait) {
		wait = float64(w.cfg.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// Flush makes one attempt at every parked write. It runs on the sweep
// schedule and once more on Close.
func (w *WriteBehind) Flush() {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	w.mu.Lock()
	patches := w.parked
	events := w.parkedEvents
	w.parked = make(map[item.ID]parkedPatch)
	w.parkedEvents = nil
	w.mu.Unlock()

	if len(patches) == 0 && len(events) == 0 {
		return
	}
	w.logger.Info("sweeping parked writes", "items", len(patches), "events", len(events))

	var failed []writeOp
	for id, p := range patches {
		op := writeOp{id: id, patch: p.patch, version: p.version}
		if err := w.apply(op); err != nil && !errors.Is(err, ErrNotFound) {
			failed = append(failed, op)
		}
	}
	for _, op := range events {
		if err := w.apply(op); err != nil {
			failed = append(failed, op)
		}
	}

	if len(failed) == 0 {
		return
	}
	w.mu.Lock()
	for _, op := range failed {
		// Anything parked while the sweep ran is newer and keeps priority.
		w.parkLocked(op)
	}
	w.mu.Unlock()
	w.logger.Warn("parked writes still failing", "count", len(failed))
}

// Close stops accepting writes, drains the queue, makes a final sweep and
// stops the scheduler. It returns an error if writes remain unpersisted.
func (w *WriteBehind) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.ops)
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-ctx.Done():
		w.cancel()
		<-w.done
	}
	w.sched.Stop()
	w.Flush()
	w.cancel()

	if n := w.Pending(); n > 0 {
		return fmt.Errorf("write-behind: %d writes not persisted", n)
	}
	return nil
}
