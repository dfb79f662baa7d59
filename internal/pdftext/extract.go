// Package pdftext pulls the text layer out of road audit reports.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdfinfo   string // if empty -> "pdfinfo"
	MaxPages  int    // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "plain-text"
	Duration time.Duration
	Warnings []string
}

// Empty reports whether no usable text was found.
func (r Result) Empty() bool { return strings.TrimSpace(r.Text) == "" }

type Extractor struct {
	cfg    Config
	tools  poppler
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner is NewExtractor with a custom command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	if runner == nil {
		runner = execRunner{}
	}
	tools := poppler{runner: runner, pdftotext: cfg.Pdftotext, pdfinfo: cfg.Pdfinfo, logger: logger}
	return &Extractor{cfg: cfg, tools: tools, logger: logger}
}

// Extract picks a strategy based on file extension. Plain-text reports are read
// directly.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("pdftext.extract.start", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TXT:
		res, err = readPlain(path)
	default:
		e.logger.Error("pdftext.extract.unsupported", "path", path, "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if res.Empty() {
		res.Warnings = append(res.Warnings, "no extractable text")
	}
	e.logger.Info("pdftext.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// extractPDF takes the text layer from pdftotext. The page count comes from
// pdfinfo when it is available, else from the form feeds in the text.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{Method: "pdf-text"}, fmt.Errorf("stat pdf: %w", err)
	}
	raw, err := e.tools.text(ctx, path, e.cfg.MaxPages)
	if err != nil {
		res := Result{Method: "pdf-text"}
		var te *ToolError
		if errors.As(err, &te) && te.Detail != "" {
			res.Warnings = []string{te.Detail}
		}
		return res, err
	}

	res := Result{Text: Normalize(raw), Method: "pdf-text"}
	total, err := e.tools.pageCount(ctx, path)
	if err != nil {
		e.logger.Debug("pdftext.pages.fallback", "path", path, "error", err)
		res.Pages = formFeedPages(raw)
		return res, nil
	}
	res.Pages = total
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were extracted", e.cfg.MaxPages, total))
	}
	return res, nil
}

func readPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Method: "plain-text"}, fmt.Errorf("read text report: %w", err)
	}
	return Result{Text: Normalize(string(b)), Pages: 1, Method: "plain-text"}, nil
}
