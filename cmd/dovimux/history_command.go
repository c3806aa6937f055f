package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dovimux/internal/history"
)

var historyHeaders = []string{"When", "Source", "Output", "Metadata", "Status"}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recent conversion jobs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(historyHeaders, historyRows(entries)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		output := "-"
		if entry.Output != "" {
			output = filepath.Base(entry.Output)
		}
		rows = append(rows, []string{
			entry.FinishedAt.Local().Format(time.DateTime),
			filepath.Base(entry.Source),
			output,
			entry.MetadataPolicy,
			entry.Status,
		})
	}
	return rows
}
