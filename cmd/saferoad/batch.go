package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/saferoad-advisor/internal/ingest"
	"github.com/joseph-ayodele/saferoad-advisor/internal/pipeline"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

func newBatchCmd(g *globals) *cobra.Command {
	var (
		out         string
		xlsx        bool
		withSummary bool
		dir         bool
	)
	cmd := &cobra.Command{
		Use:   "batch <report.pdf | dir>",
		Short: "Cost-estimate every section of an audit report",
		Long: `batch splits an audit report into lines, matches interventions for each line,
prices them and writes output/intervention_report.json. The catalog must load;
there is no fallback in batch mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newAnalyzer(ctx, g.cfg, catalogStrict, g.logger)
			if err != nil {
				return err
			}

			target := args[0]
			if !dir {
				if out == "" {
					out = filepath.Join(g.cfg.Output.Dir, filepath.Base(report.DefaultBatchPath))
				}
				return runBatch(cmd, a, target, out, xlsx, withSummary)
			}

			paths, stats, err := ingest.DiscoverReports(target, nil, true)
			if err != nil {
				return err
			}
			g.logger.Info("batch.discover.ok", "root", target, "scanned", stats.Scanned, "matched", stats.Matched)
			for _, p := range paths {
				dst := filepath.Join(g.cfg.Output.Dir, strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))+".json")
				if err := runBatch(cmd, a, p, dst, xlsx, withSummary); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output JSON path (default $OUTPUT_DIR/intervention_report.json)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write an XLSX workbook next to the JSON")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "ask the summary provider for an overall summary")
	cmd.Flags().BoolVar(&dir, "dir", false, "treat the argument as a directory and process every PDF in it")
	return cmd
}

func runBatch(cmd *cobra.Command, a *pipeline.Analyzer, path, out string, xlsx, withSummary bool) error {
	br, err := a.AnalyzeBatch(cmd.Context(), path, withSummary)
	if err != nil {
		return err
	}
	if err := report.WriteBatchText(cmd.OutOrStdout(), br); err != nil {
		return err
	}
	if err := report.WriteJSON(out, br); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport saved at: %s\n", out)
	if xlsx {
		x := strings.TrimSuffix(out, filepath.Ext(out)) + ".xlsx"
		if err := report.WriteXLSX(x, br); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workbook saved at: %s\n", x)
	}
	return nil
}
