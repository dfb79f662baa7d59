package main

import (
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/saferoad-advisor/internal/ingest"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

func newWatchCmd(g *globals) *cobra.Command {
	var (
		initial  bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Analyze audit PDFs as they appear in a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newAnalyzer(ctx, g.cfg, catalogFallback, g.logger)
			if err != nil {
				return err
			}
			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initial,
				Debounce:    debounce,
				Logger:      g.logger,
			})
			if err != nil {
				return err
			}
			g.logger.Info("watch.start", "roots", args, "output_dir", g.cfg.Output.Dir)

			for {
				select {
				case p, ok := <-events:
					if !ok {
						return nil
					}
					r := a.AnalyzePDF(ctx, p)
					dst := filepath.Join(g.cfg.Output.Dir, strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))+".analysis.json")
					if err := report.WriteJSON(dst, r); err != nil {
						g.logger.Error("watch.write_failed", "path", p, "error", err)
						continue
					}
					g.logger.Info("watch.analyzed", "path", p, "issues", len(r.Issues), "matches", len(r.Matches), "out", dst)
				case err, ok := <-errs:
					if ok {
						g.logger.Warn("watch.error", "error", err)
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&initial, "initial-scan", true, "analyze PDFs already present at startup")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "wait this long after the last write before analyzing")
	return cmd
}
