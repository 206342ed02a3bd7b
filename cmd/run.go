package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

var runSkipSeed bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order: seed, xref, ingest, validate",
	Long:  "Runs the full pipeline. Every stage is idempotent, so an interrupted run can simply be started again; stored identifiers and ratings are reused and no catalog lookups are repeated for them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var stages []pipeline.Stage
		if !runSkipSeed {
			stages = append(stages, newSeeder(env))
		}
		stages = append(stages, pipeline.NewXrefBuilder(env.Catalogs, env.Store, cfg.Ingest.Concurrency))
		stages = append(stages, ingestors(env)...)

		var reports []*pipeline.Report
		// Print whatever finished before a failing stage.
		defer func() {
			if len(reports) > 0 {
				writeReports(os.Stdout, reports...)
			}
		}()

		for _, s := range stages {
			zap.L().Info("run: starting stage", zap.String("stage", s.Name()))
			r, err := runStage(ctx, env.Store, s)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}

		res, err := runValidation(ctx, env, 0)
		if err != nil {
			return err
		}
		reports = append(reports, res.Report)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runSkipSeed, "skip-seed", false, "reuse the stored cohort instead of rediscovering it")
	rootCmd.AddCommand(runCmd)
}
