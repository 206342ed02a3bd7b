package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

var (
	validateLimit  int
	validateJSON   bool
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare titles across catalogs for every cross-reference",
	Long:  "Fetches the title from both catalogs for each stored cross-reference and lists the pairs whose titles differ after entity decoding and article reordering. Nothing is written except the run log.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := runValidation(ctx, env, validateLimit)
		if err != nil {
			return err
		}

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return eris.Wrap(err, "validate: encode result")
			}
		} else {
			writeValidation(os.Stdout, res)
		}

		if validateStrict && len(res.Mismatches) > 0 {
			return eris.Errorf("validate: %d mismatched cross-references", len(res.Mismatches))
		}
		return nil
	},
}

// runValidation validates the first limit cross-references (all when
// limit <= 0) under the run log.
func runValidation(ctx context.Context, env *pipelineEnv, limit int) (*pipeline.ValidationResult, error) {
	pairs, err := env.Store.ListCrossRefs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "validate: load cross-references")
	}
	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}

	var res *pipeline.ValidationResult
	_, err = withRun(ctx, env.Store, pipeline.StageValidate, func(ctx context.Context) (*pipeline.Report, error) {
		r, err := pipeline.NewValidator(env.Catalogs, cfg.Ingest.Concurrency).Validate(ctx, pairs)
		if err != nil {
			return nil, err
		}
		res = r
		return r.Report, nil
	})
	return res, err
}

func writeValidation(w io.Writer, res *pipeline.ValidationResult) {
	_, _ = fmt.Fprintf(w, "Checked %d, matched %d, mismatched %d, skipped %d.\n",
		res.Checked, res.Matched, len(res.Mismatches), res.Skipped)
	if len(res.Mismatches) == 0 {
		return
	}

	tt := newTextTable(numCol("Movie ID"), textCol("IMDb ID"), textCol("Metadata Title"), textCol("Rating Title"))
	for _, m := range res.Mismatches {
		tt.addRow(strconv.FormatInt(m.MovieID, 10), m.ForeignID, m.PrimaryTitle, m.SecondaryTitle)
	}
	_, _ = fmt.Fprintln(w, tt)
}

func init() {
	validateCmd.Flags().IntVar(&validateLimit, "limit", 0, "validate at most this many cross-references (0 = all)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the result as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "exit non-zero when any mismatch is found")
	rootCmd.AddCommand(validateCmd)
}

