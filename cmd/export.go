package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the joined dataset to CSV or XLSX",
	Long:  "Writes one row per stored movie with every collected attribute. The format follows the --out extension (.csv or .xlsx).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if _, err := export.FormatFor(exportOut); err != nil {
			return err
		}

		st, err := openStore(ctx, config.ModeStore)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rows, err := st.Dataset(ctx)
		if err != nil {
			return eris.Wrap(err, "export: load dataset")
		}
		if err := export.WriteFile(exportOut, rows); err != nil {
			return err
		}

		zap.L().Info("export: wrote dataset", zap.String("path", exportOut), zap.Int("rows", len(rows)))
		fmt.Printf("Wrote %d rows to %s\n", len(rows), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (.csv or .xlsx)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
