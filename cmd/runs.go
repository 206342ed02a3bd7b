package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/model"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent stage runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, config.ModeStore)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}
		writeRuns(os.Stdout, runs)
		return nil
	},
}

func writeRuns(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tt := newTextTable(textCol("ID"), textCol("Stage"), textCol("Status"), textCol("Started"), numCol("Duration"), textCol("Error"))
	for _, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		tt.addRow(
			truncateID(r.ID),
			r.Stage,
			string(r.Status),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			truncate(r.Error, 60),
		)
	}
	_, _ = fmt.Fprintln(w, tt)
}

func truncateID(id string) string {
	return truncate(id, 8)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}
