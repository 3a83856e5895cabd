package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/session"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.Items().ListAll(ctx)
		if err != nil {
			return err
		}
		answers, err := st.Events().AnswerStats(ctx)
		if err != nil {
			return err
		}
		sessions, err := st.Events().QuerySessions(ctx, 5)
		if err != nil {
			return err
		}

		p := session.Snapshot(item.NewPool(items), cfg.Policy)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Items:     %d\n", p.Total)
		if cfg.Policy == queue.PolicyCoverage {
			fmt.Fprintf(out, "Answered:  %d (%.0f%%) this pass\n", p.MasteredOrAnswered, p.Percent()*100)
		} else {
			fmt.Fprintf(out, "Tier:      %d (%.0f%%) past level %d\n", p.MasteredOrAnswered, p.Percent()*100, p.MinMastery)
			fmt.Fprintf(out, "Mastery:   %d correct answers banked\n", p.TotalMastery)
		}
		fmt.Fprintf(out, "Review:    %d flagged\n", p.Review)
		fmt.Fprintf(out, "Answers:   %d, %.0f%% correct\n", answers.Attempts, answers.Accuracy()*100)

		if len(sessions) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent sessions:")
			for _, s := range sessions {
				fmt.Fprintf(out, "  %s  %-6s  %d/%d correct  %ds\n",
					s.Timestamp.Local().Format("2006-01-02 15:04"), s.Mode, s.CorrectAnswers, s.ItemsAnswered, s.DurationSecs)
			}
		}
		return nil
	},
}
