package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultBatchPath is where batch runs write their JSON report.
var DefaultBatchPath = filepath.Join("output", "intervention_report.json")

var ErrInvalidReport = errors.New("invalid report")

// Marshal renders v as indented JSON after checking it against the matching
// document schema.
func Marshal(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var schema map[string]any
	switch v.(type) {
	case BatchReport, *BatchReport:
		schema = batchSchema()
	case Report, *Report:
		schema = reportSchema()
	}
	if schema != nil {
		if err := ValidateJSONAgainstSchema(schema, b); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
		}
	}
	return b, nil
}

// WriteJSON validates and writes v to path, creating parent directories.
func WriteJSON(path string, v any) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	return writeFile(path, append(b, '\n'))
}

// WriteXLSX renders the batch workbook to path.
func WriteXLSX(path string, b BatchReport) error {
	data, err := BatchXLSX(b)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// BatchXLSX returns an XLSX workbook (as bytes) with one row per recommendation
// and a grand total row.
func BatchXLSX(b BatchReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Interventions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []any{"Issue", "Detected Issues", "Intervention", "IRC Code", "Clause", "Cost Level", "Estimated Cost", "Section Total"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for _, s := range b.Sections {
		for i, rec := range s.Recommendations {
			write(1, truncate(s.Issue, 200))
			write(2, strings.Join(s.Issues, ", "))
			write(3, rec.Intervention)
			write(4, rec.IRCCode)
			write(5, rec.Clause)
			write(6, rec.CostLevel)
			write(7, rec.EstimatedCost)
			// section total only on the first row of a section
			if i == 0 {
				write(8, s.TotalCost)
			}
			row++
		}
	}
	write(1, "Grand Total")
	write(8, b.GrandTotal)

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
		_ = f.SetRowStyle(sheet, row, row, style)
	}

	_ = f.SetColWidth(sheet, "A", "A", 60) // issue
	_ = f.SetColWidth(sheet, "B", "B", 24) // tokens
	_ = f.SetColWidth(sheet, "C", "C", 36) // intervention
	_ = f.SetColWidth(sheet, "D", "F", 14)
	_ = f.SetColWidth(sheet, "G", "H", 16) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
