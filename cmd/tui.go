package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/oulpan/internal/app"
	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/screen"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/store"
)

// drainTimeout bounds how long exit waits for queued writes.
const drainTimeout = 10 * time.Second

// runTUI opens the store, builds the controller behind a write-behind
// persister and launches the TUI. An empty mode starts at the home screen.
func runTUI(mode queue.Mode, splash bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	wb, err := store.NewWriteBehind(st.Items(), st.Events(), store.WriteBehindConfig{
		FlushInterval: cfg.FlushInterval,
		Logger:        logging.Logger,
	})
	if err != nil {
		return fmt.Errorf("start write-behind: %w", err)
	}

	clock := app.NewClock()
	opts := cfg.SessionOptions()
	opts.Clock = clock
	opts.Persister = wb
	opts.Logger = logging.Logger
	ctrl := session.New(opts)

	runErr := app.Run(app.Options{
		Deps: screen.Deps{
			Controller: ctrl,
			Items:      st.Items(),
			Events:     st.Events(),
		},
		Clock:  clock,
		Splash: splash,
		Mode:   mode,
	})

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := wb.Close(ctx); err != nil {
		logging.Error("write-behind close", "err", err)
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	return runErr
}
