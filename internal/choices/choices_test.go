package choices

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/item"
)

func wordPool(n int) *item.Pool {
	items := make([]item.Item, n)
	for i := range n {
		items[i] = item.Item{
			ID:     item.ID(i + 1),
			Kind:   item.KindWord,
			Prompt: fmt.Sprintf("src-%d", i+1),
			Answer: fmt.Sprintf("dst-%d", i+1),
		}
	}
	return item.NewPool(items)
}

func TestSample_SizeAndCorrectPresent(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 12} {
		pool := wordPool(n)
		correct, _ := pool.Get(1)
		want := min(DefaultK, n)

		for seed := range uint64(1000) {
			s := NewSampler(DefaultK, rand.New(rand.NewPCG(seed, seed^0x9e37)))
			opts := s.Sample(pool, correct)
			require.Len(t, opts, want, "n=%d seed=%d", n, seed)

			ids := map[string]bool{}
			hits := 0
			for _, o := range opts {
				require.False(t, ids[o.ID], "duplicate option %s", o.ID)
				ids[o.ID] = true
				if o.Key == correct.Answer {
					hits++
				}
			}
			require.Equal(t, 1, hits, "correct answer must appear exactly once")
		}
	}
}

func TestSample_CorrectPositionNotFixed(t *testing.T) {
	pool := wordPool(8)
	correct, _ := pool.Get(3)
	positions := make([]int, DefaultK)

	s := NewSampler(DefaultK, rand.New(rand.NewPCG(7, 11)))
	for range 4000 {
		for i, o := range s.Sample(pool, correct) {
			if o.Key == correct.Answer {
				positions[i]++
			}
		}
	}
	for i, c := range positions {
		assert.InDelta(t, 1000, c, 150, "position %d", i)
	}
}

func TestSample_PrefersDistinctText(t *testing.T) {
	pool := item.NewPool([]item.Item{
		{ID: 1, Prompt: "a", Answer: "same"},
		{ID: 2, Prompt: "b", Answer: "same"},
		{ID: 3, Prompt: "c", Answer: "x"},
		{ID: 4, Prompt: "d", Answer: "y"},
		{ID: 5, Prompt: "e", Answer: "z"},
	})
	correct, _ := pool.Get(1)

	for seed := range uint64(200) {
		opts := NewSampler(4, rand.New(rand.NewPCG(seed, 1))).Sample(pool, correct)
		texts := map[string]int{}
		for _, o := range opts {
			texts[o.Text]++
		}
		assert.Equal(t, 1, texts["same"], "seed %d", seed)
	}
}

func TestSample_QuestionUsesOwnChoices(t *testing.T) {
	q := item.Item{
		ID: 1, Kind: item.KindQuestion, Prompt: "2+2?", Answer: "C",
		Choices: []item.Choice{{Key: "A", Text: "3"}, {Key: "B", Text: "5"}, {Key: "C", Text: "4"}},
	}
	pool := item.NewPool([]item.Item{q})

	opts := NewSampler(4, nil).Sample(pool, q)
	require.Len(t, opts, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{opts[0].ID, opts[1].ID, opts[2].ID})

	o, ok := Find(opts, "C")
	require.True(t, ok)
	assert.Equal(t, "4", o.Text)
	_, ok = Find(opts, "Z")
	assert.False(t, ok)
}

func TestNewSampler_DefaultsSmallK(t *testing.T) {
	assert.Equal(t, DefaultK, NewSampler(1, nil).K())
	assert.Equal(t, 6, NewSampler(6, nil).K())
}
