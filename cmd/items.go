package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/importer"
	"github.com/abhisek/oulpan/internal/item"
	"github.com/abhisek/oulpan/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <prompt> <answer>",
	Short: "Add a word pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		it := item.Item{Kind: item.KindWord, Prompt: args[0], Answer: args[1], Tags: item.NewTags(tags...)}
		res, err := importer.New(st.Items()).Import(cmd.Context(), []item.Item{it})
		if err != nil {
			return err
		}
		switch {
		case len(res.Invalid) > 0:
			return res.Invalid[0]
		case res.Duplicates > 0:
			return fmt.Errorf("%q is already in the list", strings.TrimSpace(args[0]))
		}
		added := res.Added[0]
		fmt.Fprintf(cmd.OutOrStdout(), "Added #%d  %s → %s\n", added.ID, added.Prompt, added.Answer)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Items().Delete(cmd.Context(), item.ID(id)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("item %d not found", id)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE: func(cmd *cobra.Command, args []string) error {
		reviewOnly, _ := cmd.Flags().GetBool("review")
		query, _ := cmd.Flags().GetString("search")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.Items().Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		if reviewOnly {
			items = item.NewPool(items).Filter(func(it item.Item) bool { return it.NeedsReview })
		}
		printItems(cmd, items)
		return nil
	},
}

func printItems(cmd *cobra.Command, items []item.Item) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No items found.")
		return
	}

	fmt.Fprintf(out, "%-5s  %-24s  %-24s  %-7s  %-6s  %s\n", "ID", "Prompt", "Answer", "Mastery", "Review", "Tags")
	fmt.Fprintln(out, strings.Repeat("─", 90))
	for _, it := range items {
		review := ""
		if it.NeedsReview {
			review = "⚑"
		}
		fmt.Fprintf(out, "%-5d  %-24s  %-24s  %-7d  %-6s  %s\n",
			it.ID, clip(it.Prompt, 24), clip(it.AnswerText(), 24), it.MasteryCount, review, it.Tags)
	}
}

// clip shortens s to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// knownPrompts returns the prompts already stored, for dedup.
func knownPrompts(ctx context.Context, repo store.ItemRepo) ([]string, error) {
	items, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	prompts := make([]string, len(items))
	for i, it := range items {
		prompts[i] = it.Prompt
	}
	return prompts, nil
}

func init() {
	addCmd.Flags().StringSlice("tag", nil, "Tag to attach (repeatable)")
	listCmd.Flags().Bool("review", false, "Only items flagged for review")
	listCmd.Flags().String("search", "", "Substring of the prompt or answer")
}
