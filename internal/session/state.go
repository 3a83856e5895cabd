package session

import (
	"context"
	"errors"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/store"
)

var (
	// ErrStoreUnavailable is returned by Load when the item store cannot be read.
	ErrStoreUnavailable = errors.New("session: item store unavailable")

	// ErrInvalidChoice is returned by Submit for an option not in the current set.
	ErrInvalidChoice = errors.New("session: invalid choice")

	// ErrBusy is returned when an action is not accepted in the current
	// feedback status, e.g. answering while feedback is still shown.
	ErrBusy = errors.New("session: not accepting input")

	// ErrNoCurrentItem is returned when there is nothing being presented.
	ErrNoCurrentItem = errors.New("session: no current item")
)

// Phase is the coarse state of the session as the UI sees it.
type Phase int

const (
	PhaseLoading        Phase = iota // Waiting for the initial pool load
	PhaseUnavailable                 // Load failed; nothing is scheduled
	PhaseEmpty                       // Pool has no items
	PhaseActive                      // An item is being presented
	PhaseReviewComplete              // Review mode found nothing flagged
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnavailable:
		return "unavailable"
	case PhaseEmpty:
		return "empty"
	case PhaseActive:
		return "active"
	case PhaseReviewComplete:
		return "review-complete"
	}
	return "unknown"
}

// Status is the per-item feedback state.
type Status int

const (
	StatusIdle Status = iota
	StatusCorrect
	StatusWrong
)

func (s Status) String() string {
	switch s {
	case StatusCorrect:
		return "correct"
	case StatusWrong:
		return "wrong"
	}
	return "idle"
}

// Lister is the read side of the item store used to fill the pool.
type Lister interface {
	ListAll(ctx context.Context) ([]item.Item, error)
}

// Persister receives every state change the controller makes. Calls must
// not block; implementations queue and retry on their own.
type Persister interface {
	Persist(id item.ID, patch item.Patch)
	RecordAnswer(data store.AnswerEventData)
	RecordSession(data store.SessionEventData)
}

type nopPersister struct{}

func (nopPersister) Persist(item.ID, item.Patch)          {}
func (nopPersister) RecordAnswer(store.AnswerEventData)   {}
func (nopPersister) RecordSession(store.SessionEventData) {}
