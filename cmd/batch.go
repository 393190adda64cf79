package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/finplanner/internal/batch"
	"github.com/sells-group/finplanner/internal/cache"
	"github.com/sells-group/finplanner/internal/export"
	"github.com/sells-group/finplanner/internal/service"
)

var (
	batchCSV         string
	batchConcurrency int
	batchOutput      string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Plan every profile in a CSV file",
	Long:  "Reads one profile per row (goals as horizon:target[:priority];...), plans them concurrently and writes a summary CSV. Bad rows are reported, not fatal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchConcurrency > 0 {
			cfg.Batch.Concurrency = batchConcurrency
		}
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		f, err := os.Open(batchCSV)
		if err != nil {
			return eris.Wrapf(err, "open %s", batchCSV)
		}
		defer f.Close() //nolint:errcheck

		rows, err := batch.ParseProfilesCSV(f)
		if err != nil {
			return err
		}

		c, err := cache.New(cfg.Cache)
		if err != nil {
			return err
		}
		if closer, ok := c.(io.Closer); ok {
			defer closer.Close() //nolint:errcheck
		}

		res, err := batch.Run(cmd.Context(), service.New(nil, c, nil), rows, cfg.Batch.Concurrency)
		if err != nil {
			return err
		}

		if err := withOutput(batchOutput, cmd.OutOrStdout(), func(w io.Writer) error {
			return export.WriteSummaryCSV(w, res.Rows)
		}); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "planned %d profiles, %d failed\n", res.Succeeded, res.Failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "input CSV of profiles")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel workers (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "summary CSV path (default stdout)")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}
