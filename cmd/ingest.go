package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

const ingestAll = "all"

var ingestCmd = &cobra.Command{
	Use:       "ingest rating|directors|composers|all",
	Short:     "Ingest one attribute kind, or all of them",
	Long:      "Ratings are fetched by cross-referenced id and keep the first stored value. Crew credits are fetched by movie id, filtered by the configured job set, and the last qualifying credit wins.",
	ValidArgs: []string{pipeline.KindRating, "directors", "composers", ingestAll},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stages, err := selectIngestors(ingestors(env), args[0])
		if err != nil {
			return err
		}

		var reports []*pipeline.Report
		for _, s := range stages {
			r, err := runStage(ctx, env.Store, s)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}
		writeReports(os.Stdout, reports...)
		return nil
	},
}

func ingestors(env *pipelineEnv) []pipeline.Stage {
	return pipeline.Ingestors(env.Catalogs, env.Store, cfg.Roles.Jobs(), cfg.Ingest.Concurrency)
}

// selectIngestors picks the stage named kind, or every stage for "all".
func selectIngestors(stages []pipeline.Stage, kind string) ([]pipeline.Stage, error) {
	if kind == ingestAll {
		return stages, nil
	}
	for _, s := range stages {
		if strings.TrimPrefix(s.Name(), "ingest:") == kind {
			return []pipeline.Stage{s}, nil
		}
	}
	return nil, eris.Errorf("ingest: unknown kind %q", kind)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
