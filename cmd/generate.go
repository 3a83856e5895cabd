package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/importer"
	"github.com/abhisek/oulpan/internal/llm"
	"github.com/abhisek/oulpan/internal/wordgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate word pairs with an LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		topic, _ := flags.GetString("topic")
		count, _ := flags.GetInt("count")
		level, _ := flags.GetString("level")
		sourceLang, _ := flags.GetString("source-lang")
		targetLang, _ := flags.GetString("target-lang")
		dryRun, _ := flags.GetBool("dry-run")

		if err := cfg.LLM.Validate(); err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.Events())
		if err != nil {
			return err
		}

		known, err := knownPrompts(ctx, st.Items())
		if err != nil {
			return err
		}

		res, err := wordgen.New(provider, wordgen.DefaultConfig()).Generate(ctx, wordgen.Input{
			Topic:      topic,
			Level:      level,
			SourceLang: sourceLang,
			TargetLang: targetLang,
			Count:      count,
			Known:      known,
		})
		if err != nil && len(res.Items) == 0 {
			return err
		}

		out := cmd.OutOrStdout()
		if err != nil {
			fmt.Fprintln(out, "Warning:", err)
		}
		if dryRun {
			printItems(cmd, res.Items)
		} else {
			imported, err := importer.New(st.Items()).Import(ctx, res.Items)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %d new words about %q.\n", len(imported.Added), topic)
		}

		usage := fmt.Sprintf("%d calls, %d in / %d out tokens", res.Calls, res.Usage.InputTokens, res.Usage.OutputTokens)
		if cost, ok := llm.LookupCost(provider.ModelID()); ok {
			usage += fmt.Sprintf(", ~$%.4f", cost.Cost(res.Usage))
		}
		fmt.Fprintln(out, usage)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("topic", "", "Theme of the word list (required)")
	generateCmd.Flags().Int("count", 20, "Number of new pairs")
	generateCmd.Flags().String("level", "beginner", "Learner level")
	generateCmd.Flags().String("source-lang", "English", "Language of the prompts")
	generateCmd.Flags().String("target-lang", "Hebrew", "Language of the answers")
	generateCmd.Flags().Bool("dry-run", false, "Print the pairs without saving them")
	_ = generateCmd.MarkFlagRequired("topic")
}
