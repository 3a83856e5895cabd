// Package choices builds the multiple-choice option set for the current item.
package choices

import (
	"math/rand/v2"
	"strconv"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/queue"
)

// DefaultK is the number of options shown per item.
const DefaultK = 4

// Option is one entry of the option set shown to the learner.
type Option struct {
	// ID identifies the option within its set. For word pairs it is the
	// item ID the option was drawn from, for questions the choice key.
	ID string

	// Text is what the learner sees.
	Text string

	// Key is compared against the answered item's Answer.
	Key string
}

// Sampler draws distractors from the pool.
type Sampler struct {
	k   int
	rng *rand.Rand
}

// NewSampler returns a sampler producing up to k options. A nil rng uses
// the global source.
func NewSampler(k int, rng *rand.Rand) *Sampler {
	if k < 2 {
		k = DefaultK
	}
	return &Sampler{k: k, rng: rng}
}

// K returns the configured option count.
func (s *Sampler) K() int { return s.k }

// Sample returns the shuffled option set for correct. Word items get k-1
// distractors drawn without replacement from the rest of the pool (fewer
// when the pool is small), so the result has min(k, pool size) entries.
// Question items return their own choices in stored order.
func (s *Sampler) Sample(pool *item.Pool, correct item.Item) []Option {
	if correct.Kind == item.KindQuestion {
		opts := make([]Option, 0, len(correct.Choices))
		for _, c := range correct.Choices {
			opts = append(opts, Option{ID: c.Key, Text: c.Text, Key: c.Key})
		}
		return opts
	}

	others := pool.Filter(func(it item.Item) bool {
		return it.ID != correct.ID && it.Kind != item.KindQuestion
	})
	queue.Shuffle(others, s.rng)

	want := s.k - 1
	picked := make([]item.Item, 0, want)
	seen := map[string]bool{correct.Answer: true}
	var dupes []item.Item
	for _, it := range others {
		if len(picked) == want {
			break
		}
		if seen[it.Answer] {
			dupes = append(dupes, it)
			continue
		}
		seen[it.Answer] = true
		picked = append(picked, it)
	}
	// Same-text distractors only fill remaining slots.
	for _, it := range dupes {
		if len(picked) == want {
			break
		}
		picked = append(picked, it)
	}

	opts := make([]Option, 0, len(picked)+1)
	opts = append(opts, wordOption(correct))
	for _, it := range picked {
		opts = append(opts, wordOption(it))
	}
	queue.Shuffle(opts, s.rng)
	return opts
}

func wordOption(it item.Item) Option {
	return Option{ID: strconv.FormatInt(int64(it.ID), 10), Text: it.Answer, Key: it.Answer}
}

// Find returns the option with id.
func Find(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
