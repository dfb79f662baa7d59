package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
	"github.com/joseph-ayodele/saferoad-advisor/internal/issues"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm/gemini"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm/openai"
	"github.com/joseph-ayodele/saferoad-advisor/internal/matcher"
	"github.com/joseph-ayodele/saferoad-advisor/internal/pdftext"
	"github.com/joseph-ayodele/saferoad-advisor/internal/pipeline"
)

// catalogPolicy selects between the interactive fallback and the strict batch load.
type catalogPolicy int

const (
	catalogFallback catalogPolicy = iota
	catalogStrict
)

func loadCatalog(ctx context.Context, cfg *common.Config, policy catalogPolicy, logger *slog.Logger) (*catalog.Catalog, error) {
	source := catalog.WithDefaultTable(cfg.Catalog.Source, cfg.Catalog.Table)
	if policy == catalogStrict {
		c, err := catalog.Load(ctx, source, logger)
		if err != nil {
			return nil, fmt.Errorf("intervention catalog %q could not be loaded; batch runs need a readable catalog: %w", cfg.Catalog.Source, err)
		}
		return c, nil
	}
	return catalog.LoadOrFallback(ctx, source, catalog.Fallback(cfg.Catalog.Fallback), logger), nil
}

// newSummarizer builds the configured provider wrapped in rate limiting and
// caching. A provider that cannot be constructed degrades to llm.Disabled.
func newSummarizer(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) llm.Summarizer {
	var base llm.Summarizer
	switch cfg.Provider {
	case "openai":
		base = openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			Retries:     cfg.Retries,
		}, logger)
	case "gemini":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			logger.Warn("llm.provider.unavailable", "provider", cfg.Provider, "error", err)
			return llm.Disabled{}
		}
		base = c
	default:
		return llm.Disabled{}
	}

	s := llm.NewRateLimited(base, cfg.RPS)
	cached, err := llm.NewCached(s, cfg.CacheSize, logger)
	if err != nil {
		logger.Warn("llm.cache.disabled", "error", err)
		return s
	}
	return cached
}

func newAnalyzer(ctx context.Context, cfg *common.Config, policy catalogPolicy, logger *slog.Logger) (*pipeline.Analyzer, error) {
	cat, err := loadCatalog(ctx, cfg, policy, logger)
	if err != nil {
		return nil, err
	}
	mode, err := issues.ParseMode(cfg.Match.IssueMode)
	if err != nil {
		return nil, err
	}
	m, err := matcher.FromConfig(cfg.Match.Strategy, cfg.Match.FuzzyThreshold)
	if err != nil {
		return nil, err
	}
	req := llm.NewRequester(newSummarizer(ctx, cfg.LLM, logger), logger,
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithInputCap(cfg.LLM.InputCap),
		llm.WithTopN(cfg.Match.TopN),
	)
	docs := pdftext.NewExtractor(pdftext.Config{Pdftotext: cfg.PDF.Pdftotext, Pdfinfo: cfg.PDF.Pdfinfo, MaxPages: cfg.PDF.MaxPages}, logger)

	logger.Info("pipeline.ready",
		"catalog", cat.Source(),
		"records", cat.Len(),
		"issue_mode", mode,
		"strategy", m.Strategy().Name(),
		"provider", cfg.LLM.Provider,
	)
	return pipeline.NewAnalyzer(pipeline.Deps{
		Catalog:   cat,
		Issues:    issues.NewExtractor(mode),
		Matcher:   m,
		Summary:   req,
		Documents: docs,
	}, pipeline.Options{EstimateCosts: cfg.Match.EstimateCosts}, logger), nil
}
