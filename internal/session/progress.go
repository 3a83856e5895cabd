package session

import (
	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/queue"
)

// Progress is the summary the UI shows above the card.
type Progress struct {
	Total int

	// MasteredOrAnswered is the number of items past the current mastery
	// tier under the level policy, or answered at least once in this pass
	// under the coverage policy. Under the level policy it restarts at 0
	// each time a tier is cleared; TotalMastery keeps growing.
	MasteredOrAnswered int

	// TotalMastery is the sum of MasteryCount over the pool.
	TotalMastery int

	Review     int
	MinMastery int

	Mode           queue.Mode
	QueueRemaining int

	// Session counters.
	Attempts int
	Correct  int
}

// Snapshot computes pool-wide progress under policy.
func Snapshot(pool *item.Pool, policy queue.Policy) Progress {
	p := Progress{
		Total:      pool.Len(),
		MinMastery: pool.MinMastery(),
		Review:     pool.Count(func(it item.Item) bool { return it.NeedsReview }),
	}
	for _, it := range pool.Items() {
		p.TotalMastery += it.MasteryCount
	}
	if policy == queue.PolicyCoverage {
		p.MasteredOrAnswered = pool.Count(func(it item.Item) bool { return it.Answered })
	} else {
		p.MasteredOrAnswered = pool.Count(func(it item.Item) bool { return it.MasteryCount > p.MinMastery })
	}
	return p
}

// Percent returns MasteredOrAnswered as a share of Total, 0 to 1.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.MasteredOrAnswered) / float64(p.Total)
}
