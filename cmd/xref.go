package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

var xrefCmd = &cobra.Command{
	Use:   "xref",
	Short: "Link every seeded movie to its rating-catalog id",
	Long:  "Resolves the IMDb id of each seeded movie and stores it without the \"tt\" prefix. Existing links are never changed, so re-running is a no-op.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := runStage(ctx, env.Store, pipeline.NewXrefBuilder(env.Catalogs, env.Store, cfg.Ingest.Concurrency))
		if err != nil {
			return err
		}
		writeReports(os.Stdout, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(xrefCmd)
}
