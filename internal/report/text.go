package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// WriteText prints a human-readable analysis.
func WriteText(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	if len(r.Issues) == 0 {
		b.WriteString("Detected issues: none\n")
	} else {
		fmt.Fprintf(&b, "Detected issues: %s\n", strings.Join(r.Issues, ", "))
	}

	b.WriteString("\nRecommended interventions:\n")
	if r.NoMatches {
		b.WriteString("  No matching interventions found.\n")
	}
	for i, m := range r.Matches {
		fmt.Fprintf(&b, "  - %s", m.Title)
		if m.IRCCode != "" {
			fmt.Fprintf(&b, " (%s", m.IRCCode)
			if m.Clause != "" {
				fmt.Fprintf(&b, ", clause %s", m.Clause)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
		if m.Description != "" {
			fmt.Fprintf(&b, "    %s\n", m.Description)
		}
		if i < len(r.MatchedBy) && len(r.MatchedBy[i]) > 0 {
			fmt.Fprintf(&b, "    Matched on: %s\n", strings.Join(r.MatchedBy[i], ", "))
		}
	}
	if r.Costs != nil {
		fmt.Fprintf(&b, "\nEstimated cost: %s\n", money(r.Costs.Total))
	}
	fmt.Fprintf(&b, "\nSummary:\n%s\n", r.Summary)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBatchText prints each section with its recommendations and totals.
func WriteBatchText(w io.Writer, br BatchReport) error {
	var b strings.Builder
	if len(br.Sections) == 0 {
		b.WriteString("No sections matched any intervention.\n")
	}
	for _, s := range br.Sections {
		fmt.Fprintf(&b, "Issue: %s\n", s.Issue)
		for _, r := range s.Recommendations {
			fmt.Fprintf(&b, "  - %s | %s | Clause: %s | Cost: %s", r.Intervention, r.IRCCode, r.Clause, money(r.EstimatedCost))
			if len(r.MatchedBy) > 0 {
				fmt.Fprintf(&b, " | Matched on: %s", strings.Join(r.MatchedBy, ", "))
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  Total estimated cost: %s\n\n", money(s.TotalCost))
	}
	fmt.Fprintf(&b, "Grand total project estimate: %s\n", money(br.GrandTotal))
	if br.Summary != "" {
		fmt.Fprintf(&b, "\nSummary:\n%s\n", br.Summary)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func money(v int64) string { return "INR " + humanize.Comma(v) }
