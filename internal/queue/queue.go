package queue

import (
	"math/rand/v2"

	"github.com/abhisek/oulpan/internal/item"
)

// Queue is a consumable, ordered snapshot of items drawn from the pool at
// build time. It is never reshuffled while being consumed.
type Queue struct {
	items []item.Item
	mode  Mode
}

// Build selects candidates from pool with sel and shuffles them into a
// new Queue. The queue is empty when the pool is empty or nothing is due.
func Build(pool *item.Pool, mode Mode, sel Selector, rng *rand.Rand) *Queue {
	if sel == nil {
		sel = LevelSelector
	}
	var candidates []item.Item
	if pool.Len() > 0 {
		candidates = sel(pool, mode)
	}
	items := make([]item.Item, len(candidates))
	copy(items, candidates)
	Shuffle(items, rng)
	return &Queue{items: items, mode: mode}
}

// Shuffle performs an in-place Fisher-Yates shuffle.
func Shuffle[T any](s []T, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := intN(rng, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

// Mode returns the mode the queue was built for.
func (q *Queue) Mode() Mode { return q.mode }

// Len returns the number of remaining items.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Empty reports whether the queue is exhausted.
func (q *Queue) Empty() bool { return q.Len() == 0 }

// Head returns the front item snapshot.
func (q *Queue) Head() (item.Item, bool) {
	if q.Empty() {
		return item.Item{}, false
	}
	return q.items[0], true
}

// Pop removes the front item.
func (q *Queue) Pop() (item.Item, bool) {
	head, ok := q.Head()
	if ok {
		q.items = q.items[1:]
	}
	return head, ok
}

// Remove drops every entry for id. Returns true if any was dropped.
func (q *Queue) Remove(id item.ID) bool {
	if q == nil {
		return false
	}
	kept := q.items[:0]
	for _, it := range q.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	removed := len(kept) != len(q.items)
	q.items = kept
	return removed
}

// IDs returns the remaining item IDs in order.
func (q *Queue) IDs() []item.ID {
	if q == nil {
		return nil
	}
	ids := make([]item.ID, len(q.items))
	for i, it := range q.items {
		ids[i] = it.ID
	}
	return ids
}
