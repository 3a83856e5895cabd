package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/queue"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a session straight away",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("mode")
		mode, err := queue.ParseMode(name)
		if err != nil {
			return err
		}
		return runTUI(mode, false)
	},
}

func init() {
	playCmd.Flags().String("mode", string(queue.ModeLearn), "Session mode: learn or review")
}
