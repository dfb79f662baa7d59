package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
)

// globals shared by every subcommand, filled in PersistentPreRunE
type globals struct {
	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	var (
		logLevel string
		catalog  string
		provider string
	)

	root := &cobra.Command{
		Use:   "saferoad",
		Short: "Road safety intervention advisor",
		Long: `saferoad detects road-safety issues in free text or audit PDFs, looks up
matching interventions in an IRC-style catalog, estimates costs and asks a
generative model for a short summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			if cmd.Flags().Changed("loglevel") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("catalog") {
				cfg.Catalog.Source = catalog
			}
			if cmd.Flags().Changed("provider") {
				cfg.LLM.Provider = provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			g.cfg = cfg
			g.logger = cfg.Log.NewLogger()
			slog.SetDefault(g.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&catalog, "catalog", "", "catalog source (csv, xlsx, sqlite://, postgres://); overrides CATALOG_SOURCE")
	root.PersistentFlags().StringVar(&provider, "provider", "", "summary provider: gemini, openai, none; overrides SUMMARY_PROVIDER")

	root.AddCommand(
		newAnalyzeCmd(g),
		newBatchCmd(g),
		newWatchCmd(g),
		newServeCmd(g),
	)
	return root
}
