package mastery

import (
	"errors"
	"fmt"

	"github.com/abhisek/oulpan/internal/item"
)

// ErrUnknownItem is returned when the answered item is no longer in the pool.
var ErrUnknownItem = errors.New("mastery: item not in pool")

// Outcome is the result of checking an answer.
type Outcome int

const (
	Incorrect Outcome = iota
	Correct
)

func (o Outcome) String() string {
	if o == Correct {
		return "correct"
	}
	return "incorrect"
}

// WrongPolicy decides what a wrong answer does to MasteryCount.
type WrongPolicy string

const (
	// WrongFreeze leaves the count untouched and only flags the item.
	WrongFreeze WrongPolicy = "freeze"

	// WrongDecrement lowers the count by one, never below zero.
	WrongDecrement WrongPolicy = "decrement"

	// WrongReset drops the count back to zero.
	WrongReset WrongPolicy = "reset"
)

// ParseWrongPolicy parses a wrong-answer policy name.
func ParseWrongPolicy(s string) (WrongPolicy, error) {
	switch WrongPolicy(s) {
	case WrongFreeze, "":
		return WrongFreeze, nil
	case WrongDecrement:
		return WrongDecrement, nil
	case WrongReset:
		return WrongReset, nil
	}
	return "", fmt.Errorf("unknown wrong-answer policy %q (want freeze, decrement or reset)", s)
}

// Check compares the chosen answer key with the item's canonical answer.
// For word pairs the key is the target-language text; for questions it is
// the choice key.
func Check(head item.Item, chosenKey string) Outcome {
	if chosenKey == head.Answer {
		return Correct
	}
	return Incorrect
}

// Apply returns it updated for the given outcome.
func Apply(it item.Item, outcome Outcome, policy WrongPolicy) item.Item {
	it.Answered = true
	if outcome == Correct {
		it.MasteryCount++
		it.NeedsReview = false
		return it
	}

	it.NeedsReview = true
	it.ErrorCount++
	switch policy {
	case WrongDecrement:
		if it.MasteryCount > 0 {
			it.MasteryCount--
		}
	case WrongReset:
		it.MasteryCount = 0
	}
	return it
}

// Result is what Process hands back to the session controller.
type Result struct {
	Outcome Outcome
	Item    item.Item
	Patch   item.Patch
}

// Process checks the answer to head, writes the new state into pool and
// returns the patch to persist. It never touches the queue.
//
// The pool's current version of the item is used, not the queue snapshot,
// so edits made since the queue was built are preserved.
func Process(pool *item.Pool, head item.Item, chosenKey string, policy WrongPolicy) (Result, error) {
	current, ok := pool.Get(head.ID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownItem, head.ID)
	}
	outcome := Check(current, chosenKey)
	updated := Apply(current, outcome, policy)
	pool.Put(updated)
	return Result{
		Outcome: outcome,
		Item:    updated,
		Patch:   updated.Progress(),
	}, nil
}
