package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/saferoad-advisor/internal/async"
	"github.com/joseph-ayodele/saferoad-advisor/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := g.cfg
			if addr != "" {
				cfg.Server.HTTPAddr = addr
			}
			a, err := newAnalyzer(ctx, cfg, catalogFallback, g.logger)
			if err != nil {
				return err
			}

			store, err := async.NewStore(cfg.Server.JobTTL)
			if err != nil {
				return err
			}
			q := async.NewAnalysisQueue(a, g.logger,
				async.WithWorkers(cfg.Server.Workers),
				async.WithQueueSize(cfg.Server.QueueSize),
				async.WithProcessTimeout(cfg.LLM.Timeout+time.Minute),
				async.WithStore(store),
			)

			srv, err := server.NewServer(a, q, g.logger, server.Config{
				Addr:      cfg.Server.HTTPAddr,
				MaxUpload: cfg.Server.MaxUpload,
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				g.logger.Warn("http.shutdown_failed", "error", err)
			}
			q.Shutdown(shutdownCtx)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; overrides HTTP_ADDR")
	return cmd
}
