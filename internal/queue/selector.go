package queue

import (
	"fmt"

	"github.com/abhisek/oulpan/internal/item"
)

// Mode selects which candidate rule applies.
type Mode string

const (
	ModeLearn  Mode = "learn"
	ModeReview Mode = "review"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLearn, "":
		return ModeLearn, nil
	case ModeReview:
		return ModeReview, nil
	}
	return "", fmt.Errorf("unknown mode %q (want learn or review)", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeReview {
		return ModeLearn
	}
	return ModeReview
}

// Selector picks the candidate set for a queue build.
// A nil or empty result means "nothing due".
type Selector func(pool *item.Pool, mode Mode) []item.Item

// Policy names a learn-mode candidate rule.
type Policy string

const (
	// PolicyLevel sweeps the pool one mastery tier at a time.
	PolicyLevel Policy = "level"

	// PolicyCoverage presents every unanswered item once per pass.
	PolicyCoverage Policy = "coverage"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyLevel, "":
		return PolicyLevel, nil
	case PolicyCoverage:
		return PolicyCoverage, nil
	}
	return "", fmt.Errorf("unknown policy %q (want level or coverage)", s)
}

// SelectorFor returns the selector implementing p.
func SelectorFor(p Policy) Selector {
	if p == PolicyCoverage {
		return CoverageSelector
	}
	return LevelSelector
}

// LevelSelector: learn candidates are the items at the pool's minimum
// mastery count; review candidates are the items needing review.
func LevelSelector(pool *item.Pool, mode Mode) []item.Item {
	if mode == ModeReview {
		return reviewCandidates(pool)
	}
	minMastery := pool.MinMastery()
	base := pool.Filter(func(it item.Item) bool { return it.MasteryCount == minMastery })
	if len(base) == 0 {
		return pool.Items()
	}
	return base
}

// CoverageSelector: learn candidates are the items not yet answered in
// this pass, falling back to the whole pool once every item was seen.
func CoverageSelector(pool *item.Pool, mode Mode) []item.Item {
	if mode == ModeReview {
		return reviewCandidates(pool)
	}
	base := pool.Filter(func(it item.Item) bool { return !it.Answered })
	if len(base) == 0 {
		return pool.Items()
	}
	return base
}

// Review never falls back to the full pool.
func reviewCandidates(pool *item.Pool) []item.Item {
	return pool.Filter(func(it item.Item) bool { return it.NeedsReview })
}
