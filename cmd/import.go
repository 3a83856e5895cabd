package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import items from a JSON, CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		truncate, _ := cmd.Flags().GetBool("truncate")
		sheet, _ := cmd.Flags().GetString("sheet")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := importer.New(st.Items()).ImportFile(cmd.Context(), args[0], importer.Options{
			Sheet:    sheet,
			Truncate: truncate,
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added %d, skipped %d duplicates, %d invalid.\n", len(res.Added), res.Duplicates, len(res.Invalid))
		for _, e := range res.Invalid {
			fmt.Fprintln(out, "  ", e)
		}
		if truncate && len(res.Invalid) > 0 {
			fmt.Fprintln(out, "Source left unchanged; fix the invalid entries and rerun.")
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("truncate", false, "Empty a JSON source file after a successful import")
	importCmd.Flags().String("sheet", "", "Workbook sheet to read (XLSX only; default first sheet)")
}
