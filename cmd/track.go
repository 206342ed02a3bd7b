package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// withRun records one stage execution in the run log. The run is marked
// failed when fn errors, including on cancellation.
func withRun(ctx context.Context, st store.Store, stage string, fn func(context.Context) (*pipeline.Report, error)) (*pipeline.Report, error) {
	run, err := st.CreateRun(ctx, stage)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: record run", stage)
	}

	// Bookkeeping outlives a cancelled stage.
	bg := context.WithoutCancel(ctx)

	report, err := fn(ctx)
	if err != nil {
		if ferr := st.FailRun(bg, run.ID, err.Error()); ferr != nil {
			zap.L().Warn("run: failed to record failure", zap.String("run_id", run.ID), zap.Error(ferr))
		}
		return nil, err
	}

	data, err := report.JSON()
	if err != nil {
		return report, err
	}
	if err := st.CompleteRun(bg, run.ID, data); err != nil {
		return report, eris.Wrapf(err, "%s: complete run", stage)
	}
	return report, nil
}

// runStage executes s under the run log.
func runStage(ctx context.Context, st store.Store, s pipeline.Stage) (*pipeline.Report, error) {
	return withRun(ctx, st, s.Name(), s.Run)
}

// writeReports prints one summary row per stage with a totals footer.
func writeReports(w io.Writer, reports ...*pipeline.Report) {
	tt := newTextTable(
		textCol("Stage"), numCol("Total"), numCol("Succeeded"), numCol("Skipped"),
		numCol("Failed"), numCol("Mismatched"), numCol("Rows"), numCol("Elapsed"),
	)

	var sum pipeline.Report
	var elapsed time.Duration
	for _, r := range reports {
		d := r.CompletedAt.Sub(r.StartedAt)
		tt.addRow(
			r.Stage,
			strconv.Itoa(r.Total()),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Mismatched),
			strconv.Itoa(r.Rows),
			d.Round(time.Millisecond).String(),
		)
		sum.Succeeded += r.Succeeded
		sum.Skipped += r.Skipped
		sum.Failed += r.Failed
		sum.Mismatched += r.Mismatched
		sum.Rows += r.Rows
		elapsed += d
	}
	if len(reports) > 1 {
		tt.setFooter(
			"Total",
			strconv.Itoa(sum.Total()),
			strconv.Itoa(sum.Succeeded),
			strconv.Itoa(sum.Skipped),
			strconv.Itoa(sum.Failed),
			strconv.Itoa(sum.Mismatched),
			strconv.Itoa(sum.Rows),
			elapsed.Round(time.Millisecond).String(),
		)
	}
	_, _ = fmt.Fprintln(w, tt)
}
