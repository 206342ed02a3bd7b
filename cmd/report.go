package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/summary"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize ratings and crew gender across the rated cohort",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, config.ModeStore)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rows, err := st.Dataset(ctx)
		if err != nil {
			return eris.Wrap(err, "report: load dataset")
		}
		s := summary.Summarize(rows)

		if reportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(s), "report: encode summary")
		}
		writeSummary(os.Stdout, s)
		return nil
	},
}

func writeSummary(w io.Writer, s *summary.Summary) {
	_, _ = fmt.Fprintf(w, "Rated movies: %d\nAverage rating: %s\n\n", s.RatedMovies, formatMean(s.AverageRating.Mean))
	if s.RatedMovies == 0 {
		return
	}

	avg := newTextTable(textCol("Director Gender"), numCol("Movies"), numCol("Avg Rating"), numCol("Avg Vote"))
	for i, r := range s.RatingByDirectorGender {
		vote := "-"
		if i < len(s.VoteByDirectorGender) {
			vote = formatMean(s.VoteByDirectorGender[i].Mean)
		}
		avg.addRow(r.Gender, strconv.Itoa(r.Count), formatMean(r.Mean), vote)
	}
	_, _ = fmt.Fprintln(w, avg)

	_, _ = fmt.Fprintln(w, "Directors")
	_, _ = fmt.Fprintln(w, shareTable(s.DirectorGenders))
	_, _ = fmt.Fprintln(w, "Composers")
	_, _ = fmt.Fprintln(w, shareTable(s.ComposerGenders))

	for _, b := range s.ComposerByDirectorGender {
		_, _ = fmt.Fprintf(w, "Composers on %s-directed movies\n", b.DirectorGender)
		_, _ = fmt.Fprintln(w, shareTable(b.Composers))
	}
}

// shareTable lists a gender distribution with its total in the footer.
func shareTable(shares []summary.GenderShare) *textTable {
	tt := newTextTable(textCol("Gender"), numCol("Count"), numCol("Share"))
	total := 0
	for _, g := range shares {
		tt.addRow(g.Gender, strconv.Itoa(g.Count), formatPercent(g.Percent))
		total += g.Count
	}
	if total > 0 {
		tt.setFooter("Total", strconv.Itoa(total), formatPercent(100))
	}
	return tt
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func formatMean(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(reportCmd)
}
