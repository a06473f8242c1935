// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/namecle/internal/history"
	"github.com/pdiddy/namecle/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past rename outcomes",
	Long: `History lists the most recent rename outcomes recorded in the
run-history database, newest first.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history-db", defaultHistoryDB, "SQLite run-history database")
	historyCmd.Flags().Int("limit", 50, "maximum number of entries to show")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("history-db")
	limit, _ := cmd.Flags().GetInt("limit")

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no history database at %s", dbPath)
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	output.WriteHistory(os.Stdout, entries)
	return nil
}
