package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

func newAnalyzeCmd(g *globals) *cobra.Command {
	var (
		text    string
		pdfPath string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze one issue description or PDF",
		Example: `  saferoad analyze "High-speed curve with poor signage near the school"
  saferoad analyze --pdf audit.pdf --json
  echo "potholes near the bus stop" | saferoad analyze -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if text != "" {
					return errors.New("pass the text either as an argument or with --text")
				}
				text = args[0]
			}
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}
			if pdfPath != "" && strings.TrimSpace(text) != "" {
				return errors.New("--pdf and text input are mutually exclusive")
			}

			ctx := cmd.Context()
			a, err := newAnalyzer(ctx, g.cfg, catalogFallback, g.logger)
			if err != nil {
				return err
			}

			var r report.Report
			if pdfPath != "" {
				if _, err := os.Stat(pdfPath); err != nil {
					return fmt.Errorf("pdf %q: %w", pdfPath, err)
				}
				r = a.AnalyzePDF(ctx, pdfPath)
			} else {
				r = a.AnalyzeText(ctx, text)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			return report.WriteText(out, r)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "issue description")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "audit report PDF to analyze instead of text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
