package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

var (
	seedYear  int
	seedLimit int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Discover the cohort and store it",
	Long:  "Pages through the metadata catalog's discovery listing for a release year, sorted by revenue, and upserts up to --limit movies.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := runStage(ctx, env.Store, newSeeder(env))
		if err != nil {
			return err
		}
		writeReports(os.Stdout, report)
		return nil
	},
}

func newSeeder(env *pipelineEnv) *pipeline.Seeder {
	opts := pipeline.SeedOptions{Year: cfg.Seed.Year, Limit: cfg.Seed.Limit, SortBy: cfg.Seed.SortBy}
	if seedYear > 0 {
		opts.Year = seedYear
	}
	if seedLimit > 0 {
		opts.Limit = seedLimit
	}
	return pipeline.NewSeeder(env.Catalogs, env.Store, opts)
}

func init() {
	seedCmd.Flags().IntVar(&seedYear, "year", 0, "primary release year (default from config)")
	seedCmd.Flags().IntVar(&seedLimit, "limit", 0, "cohort size (default from config)")
	rootCmd.AddCommand(seedCmd)
}

