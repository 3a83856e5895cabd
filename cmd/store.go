package cmd

import (
	"fmt"

	"github.com/abhisek/oulpan/internal/store"
)

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	dsn, err := cfg.ResolveDB()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
