package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out one increasing number across all event tables,
// so answers and session events can be ordered against each other. The
// mutex serializes callers in this process; the transaction covers other
// connections.
type sequenceCounter struct {
	mu      sync.Mutex
	drv     *entsql.Driver
	dialect string
}

// newSequenceCounter creates a counter and seeds the tracking row.
func newSequenceCounter(ctx context.Context, drv *entsql.Driver) (*sequenceCounter, error) {
	b := entsql.Dialect(drv.Dialect())
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(GlobalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("check sequence: %w", err)
	}
	n, err := entsql.ScanInt(rows)
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("check sequence: %w", err)
	}

	if n == 0 {
		query, args = b.Insert(GlobalSequenceTable.Name).
			Columns("id", "next_val").
			Values(1, 1).
			Query()
		if err := drv.Exec(ctx, query, args, nil); err != nil {
			return nil, fmt.Errorf("seed sequence: %w", err)
		}
	}

	return &sequenceCounter{drv: drv, dialect: drv.Dialect()}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	b := entsql.Dialect(sc.dialect)
	query, args := b.Update(GlobalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args = b.Select("next_val").
		From(b.Table(GlobalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	rows := &entsql.Rows{}
	if err := tx.Query(ctx, query, args, rows); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	next, err := entsql.ScanInt64(rows)
	rows.Close()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
