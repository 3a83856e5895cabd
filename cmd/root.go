package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/oulpan/internal/config"
	"github.com/abhisek/oulpan/internal/logging"
	"github.com/abhisek/oulpan/internal/queue"
)

// cfg is filled by the root PersistentPreRunE before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:          "oulpan",
	Short:        "Vocabulary trainer for the terminal",
	Long:         "Oulpan drills word pairs and multiple-choice questions until every item is mastered.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI("", true)
	},
}

func Execute() error {
	defer logging.Close()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file or DSN (overrides OULPAN_DB)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite, postgres or mysql (overrides OULPAN_DB_DRIVER)")
	rootCmd.PersistentFlags().String("policy", "", "Learn policy: level or coverage (overrides OULPAN_POLICY)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env and the environment, then applies flag overrides
// (highest priority) and starts the file logger.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	c, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logPath, err := c.ResolveLogFile()
	if err != nil {
		return fmt.Errorf("resolve log file: %w", err)
	}
	if err := logging.Init(logPath, c.LogLevel); err != nil {
		return err
	}
	cfg = c
	return nil
}

func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if v, _ := flags.GetString("db"); v != "" {
		c.DBPath = v
	}
	if v, _ := flags.GetString("driver"); v != "" {
		c.DBDriver = v
	}
	if v, _ := flags.GetString("policy"); v != "" {
		p, err := queue.ParsePolicy(v)
		if err != nil {
			return fmt.Errorf("--policy: %w", err)
		}
		c.Policy = p
	}
	return nil
}
