// Package pipeline wires extraction, matching, costing and summarizing into a
// single analysis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
	"github.com/joseph-ayodele/saferoad-advisor/internal/cost"
	"github.com/joseph-ayodele/saferoad-advisor/internal/issues"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
	"github.com/joseph-ayodele/saferoad-advisor/internal/matcher"
	"github.com/joseph-ayodele/saferoad-advisor/internal/pdftext"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

// TextExtractor reads the text layer of a report file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdftext.Result, error)
}

// Deps are the collaborators of an Analyzer. Only Catalog is required.
type Deps struct {
	Catalog   *catalog.Catalog
	Issues    *issues.Extractor
	Matcher   *matcher.Matcher
	Summary   *llm.Requester
	Documents TextExtractor
}

type Options struct {
	EstimateCosts bool
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use.
type Analyzer struct {
	catalog   *catalog.Catalog
	issues    *issues.Extractor
	matcher   *matcher.Matcher
	summary   *llm.Requester
	documents TextExtractor
	opts      Options
	logger    *slog.Logger
}

func NewAnalyzer(d Deps, opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Empty()
	}
	if d.Issues == nil {
		d.Issues = issues.NewExtractor(issues.ModeWordPrefix)
	}
	if d.Matcher == nil {
		d.Matcher = matcher.New(nil)
	}
	if d.Summary == nil {
		d.Summary = llm.NewRequester(nil, logger)
	}
	if d.Documents == nil {
		d.Documents = pdftext.NewExtractor(pdftext.Config{}, logger)
	}
	return &Analyzer{
		catalog:   d.Catalog,
		issues:    d.Issues,
		matcher:   d.Matcher,
		summary:   d.Summary,
		documents: d.Documents,
		opts:      opts,
		logger:    logger,
	}
}

func (a *Analyzer) Catalog() *catalog.Catalog { return a.catalog }

// AnalyzeText analyzes manually entered text. Empty text yields a report with no
// issues and no matches.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) report.Report {
	return a.analyze(ctx, report.Input{Source: report.SourceManual, Text: text})
}

// AnalyzePDF analyzes a report file. Extraction failures are logged and the
// document is treated as empty text.
func (a *Analyzer) AnalyzePDF(ctx context.Context, path string) report.Report {
	in := report.Input{Source: path}
	res, err := a.documents.Extract(ctx, path)
	if err != nil {
		a.logger.Warn("pipeline.pdf.extract_failed", "path", path, "error", err)
		in.Warnings = append(in.Warnings, fmt.Sprintf("text extraction failed: %v", err))
	} else {
		in.Text = res.Text
		in.Pages = res.Pages
		in.Warnings = append(in.Warnings, res.Warnings...)
	}
	return a.analyze(ctx, in)
}

func (a *Analyzer) analyze(ctx context.Context, in report.Input) report.Report {
	start := time.Now()

	found := a.issues.Extract(in.Text)
	matches := a.matcher.Match(found, a.catalog)

	var costs *cost.Breakdown
	if a.opts.EstimateCosts && len(matches) > 0 {
		b := cost.Estimate(matches)
		costs = &b
	}
	summary := a.summary.Request(ctx, in.Text, matches)

	r := report.Assemble(in, found, matches, a.matchedBy(found, matches), costs, summary)
	a.logger.Info("pipeline.analyze.ok",
		"report_id", r.ID,
		"source", r.Source,
		"text_len", len(in.Text),
		"issues", len(found),
		"matches", len(matches),
		"summary_available", summary.Available,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return r
}

// AnalyzeBatch splits a report into non-empty lines and treats each as a
// section. Sections without matches are dropped. Unlike AnalyzePDF, an
// unreadable document is an error.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, path string, withSummary bool) (report.BatchReport, error) {
	start := time.Now()
	res, err := a.documents.Extract(ctx, path)
	if err != nil {
		a.logger.Error("pipeline.batch.extract_failed", "path", path, "error", err)
		return report.BatchReport{}, fmt.Errorf("extract %s: %w", path, err)
	}

	lines := pdftext.Lines(res.Text)
	sections := make([]report.SectionInput, 0, len(lines))
	var all []string
	for i, ln := range lines {
		if err := ctx.Err(); err != nil {
			return report.BatchReport{}, err
		}
		found := a.issues.Extract(ln)
		matches := a.matcher.Match(found, a.catalog)
		a.logger.Debug("pipeline.batch.section", "index", i, "issues", len(found), "matches", len(matches))
		sections = append(sections, report.SectionInput{
			Text:      ln,
			Issues:    found,
			Matches:   matches,
			MatchedBy: a.matchedBy(found, matches),
		})
		all = append(all, found...)
	}

	var summary string
	if withSummary {
		summary = a.summary.Summarize(ctx, res.Text, a.matcher.Match(all, a.catalog))
	}

	br := report.AssembleBatch(path, sections, summary)
	a.logger.Info("pipeline.batch.ok",
		"report_id", br.ID,
		"path", path,
		"lines", len(lines),
		"sections", len(br.Sections),
		"grand_total", br.GrandTotal,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return br, nil
}

func (a *Analyzer) matchedBy(found []string, matches []catalog.Record) [][]string {
	if len(matches) == 0 {
		return nil
	}
	out := make([][]string, len(matches))
	for i, m := range matches {
		out[i] = a.matcher.MatchedBy(found, m)
	}
	return out
}
