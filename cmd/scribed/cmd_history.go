package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scribed/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent job outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Paths.HistoryDB == "" {
			return fmt.Errorf("paths.history_db is not configured")
		}

		s, err := store.NewHistoryStore(cfg.Paths.HistoryDB)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.Recent(historyLimit)
		if err != nil {
			return err
		}
		completed, failed, err := s.Counts()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tFILE\tSTATUS\tDURATION\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.3fs\t%s\n",
				e.JobID, e.Identity, e.Status, e.DurationSec, e.Error)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d completed, %d failed\n", completed, failed)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of rows to show")
}
