// Package report assembles analysis results into exportable documents.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
	"github.com/joseph-ayodele/saferoad-advisor/internal/cost"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
)

// SourceManual marks text typed in by a user rather than read from a file.
const SourceManual = "manual"

// maxInputChars bounds the input text echoed back in a report.
const maxInputChars = 4000

// Input describes what was analyzed.
type Input struct {
	Source    string   `json:"source"`
	Text      string   `json:"text"`
	Truncated bool     `json:"truncated,omitempty"`
	Pages     int      `json:"pages,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Report is the result of one analysis. It is not modified after Assemble.
type Report struct {
	ID               string           `json:"id"`
	Source           string           `json:"source"`
	Input            Input            `json:"input"`
	Issues           []string         `json:"issues"`
	Matches          []catalog.Record `json:"matches"`
	MatchedBy        [][]string       `json:"matched_by,omitempty"` // issue tokens per match, same order as Matches
	NoMatches        bool             `json:"no_matches"`
	Costs            *cost.Breakdown  `json:"costs,omitempty"`
	Summary          string           `json:"summary"`
	SummaryAvailable bool             `json:"summary_available"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Assemble aggregates pipeline outputs. It performs no I/O. matchedBy may be
// nil; otherwise it is aligned with matches.
func Assemble(input Input, issues []string, matches []catalog.Record, matchedBy [][]string, costs *cost.Breakdown, summary llm.Summary) Report {
	if input.Source == "" {
		input.Source = SourceManual
	}
	if r := []rune(input.Text); len(r) > maxInputChars {
		input.Text = string(r[:maxInputChars])
		input.Truncated = true
	}
	if issues == nil {
		issues = []string{}
	}
	if matches == nil {
		matches = []catalog.Record{}
	}
	return Report{
		ID:               uuid.NewString(),
		Source:           input.Source,
		Input:            input,
		Issues:           issues,
		Matches:          matches,
		MatchedBy:        matchedBy,
		NoMatches:        len(matches) == 0,
		Costs:            costs,
		Summary:          summary.Text,
		SummaryAvailable: summary.Available,
		CreatedAt:        time.Now().UTC(),
	}
}

// Recommendation is one intervention attached to a batch section.
type Recommendation struct {
	Intervention  string `json:"intervention"`
	IRCCode       string `json:"irc_code"`
	Clause        string `json:"clause"`
	CostLevel     string `json:"cost_level"`
	EstimatedCost int64    `json:"estimated_cost"`
	MatchedBy     []string `json:"matched_by,omitempty"`
}

// Section is one line of a batch report that produced at least one match.
type Section struct {
	Issue           string           `json:"issue"`
	Issues          []string         `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalCost       int64            `json:"total_cost"`
}

// BatchReport is the cost-estimated report of a whole audit document.
type BatchReport struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Sections   []Section `json:"sections"`
	GrandTotal int64     `json:"grand_total"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SectionInput is the unpriced outcome of one batch section.
type SectionInput struct {
	Text      string
	Issues    []string
	Matches   []catalog.Record
	MatchedBy [][]string // aligned with Matches; may be nil
}

// AssembleBatch prices every section with matches and drops the rest. A record
// matched by several sections is priced in each.
func AssembleBatch(source string, sections []SectionInput, summary string) BatchReport {
	var totals cost.Batch
	out := BatchReport{
		ID:        uuid.NewString(),
		Source:    source,
		Sections:  []Section{},
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	for _, s := range sections {
		if len(s.Matches) == 0 {
			continue
		}
		br := totals.Add(s.Matches)
		sec := Section{
			Issue:           s.Text,
			Issues:          s.Issues,
			Recommendations: make([]Recommendation, 0, len(br.Lines)),
			TotalCost:       br.Total,
		}
		if sec.Issues == nil {
			sec.Issues = []string{}
		}
		for i, ln := range br.Lines {
			rec := Recommendation{
				Intervention:  ln.Title,
				IRCCode:       ln.IRCCode,
				Clause:        ln.Clause,
				CostLevel:     ln.CostTier,
				EstimatedCost: ln.Amount,
			}
			if i < len(s.MatchedBy) {
				rec.MatchedBy = s.MatchedBy[i]
			}
			sec.Recommendations = append(sec.Recommendations, rec)
		}
		out.Sections = append(out.Sections, sec)
	}
	out.GrandTotal = totals.GrandTotal()
	return out
}
