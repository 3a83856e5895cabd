package item

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidItem is returned when an item is missing its prompt or answer.
var ErrInvalidItem = errors.New("item: invalid item")

// ID identifies an item within the pool. Assigned by the item store.
type ID int64

// Kind distinguishes word pairs from questions that carry their own options.
type Kind string

const (
	KindWord     Kind = "word"
	KindQuestion Kind = "question"
)

// Choice is one of the fixed options of a question item.
type Choice struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Item is the atomic learnable unit.
type Item struct {
	ID   ID
	Kind Kind

	// Prompt is what the learner sees (source-language word or question body).
	Prompt string

	// Answer is the target-language text for words, or the key of the
	// correct Choice for questions.
	Answer string

	// Choices is only set for question items.
	Choices []Choice

	// Explanation is shown after answering a question item.
	Explanation string

	Tags Tags

	// MasteryCount counts correct answers since the item was last missed
	// (subject to the configured wrong-answer policy).
	MasteryCount int

	// NeedsReview is set by a wrong answer and cleared by the next correct one.
	NeedsReview bool

	// ErrorCount is informational only and never gates scheduling.
	ErrorCount int

	// Answered marks that the item was presented in the current learning pass.
	Answered bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims text fields and fills defaults.
func (it *Item) Normalize() {
	it.Prompt = strings.TrimSpace(it.Prompt)
	it.Answer = strings.TrimSpace(it.Answer)
	if it.Kind == "" {
		if len(it.Choices) > 0 {
			it.Kind = KindQuestion
		} else {
			it.Kind = KindWord
		}
	}
	it.Tags = NewTags(it.Tags...)
}

// Validate checks the fields the scheduler relies on.
func (it Item) Validate() error {
	if it.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidItem)
	}
	if it.Answer == "" {
		return fmt.Errorf("%w: empty answer for %q", ErrInvalidItem, it.Prompt)
	}
	if it.MasteryCount < 0 || it.ErrorCount < 0 {
		return fmt.Errorf("%w: negative counter for %q", ErrInvalidItem, it.Prompt)
	}
	if it.Kind == KindQuestion {
		if len(it.Choices) < 2 {
			return fmt.Errorf("%w: question %q needs at least 2 choices", ErrInvalidItem, it.Prompt)
		}
		if _, ok := it.Choice(it.Answer); !ok {
			return fmt.Errorf("%w: answer key %q not among choices of %q", ErrInvalidItem, it.Answer, it.Prompt)
		}
	}
	return nil
}

// Choice returns the choice with the given key.
func (it Item) Choice(key string) (Choice, bool) {
	for _, c := range it.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// AnswerText returns the human-readable correct answer.
func (it Item) AnswerText() string {
	if it.Kind == KindQuestion {
		if c, ok := it.Choice(it.Answer); ok {
			return c.Text
		}
	}
	return it.Answer
}

// Progress returns the scheduling fields as a patch, used when persisting
// the outcome of an answer.
func (it Item) Progress() Patch {
	return Patch{
		MasteryCount: &it.MasteryCount,
		NeedsReview:  &it.NeedsReview,
		ErrorCount:   &it.ErrorCount,
		Answered:     &it.Answered,
	}
}

// PromptKey is the duplicate-detection key for a prompt: trimmed,
// NFC-normalized and lower-cased.
func PromptKey(prompt string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(prompt)))
}
