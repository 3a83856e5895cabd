package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learning progress",
	Long:  "Reset mastery, review flags and answered state on every item. With --all, delete every item instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if all {
			n, err := st.Items().DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d items.\n", n)
			return nil
		}
		n, err := st.Items().ResetProgress(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Reset progress on %d items.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Delete all items instead of resetting progress")
}
