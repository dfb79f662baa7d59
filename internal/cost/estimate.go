// Package cost attaches representative numeric costs to matched interventions.
package cost

import (
	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

// Line is the cost attributed to one record.
type Line struct {
	Title    string `json:"title"`
	IRCCode  string `json:"irc_code,omitempty"`
	Clause   string `json:"clause,omitempty"`
	CostTier string `json:"cost_tier,omitempty"`
	Amount   int64  `json:"estimated_cost"`
}

// Breakdown is the per-record cost list plus its total.
type Breakdown struct {
	Lines []Line `json:"lines"`
	Total int64  `json:"total_cost"`
}

// RecordCost is the record's provided estimate if positive, else the tier value.
// Unknown tiers are 0.
func RecordCost(r catalog.Record) int64 {
	if r.EstimatedCost > 0 {
		return r.EstimatedCost
	}
	return constants.TierCost(r.CostTier)
}

// Estimate prices each record in order and sums them.
func Estimate(records []catalog.Record) Breakdown {
	b := Breakdown{Lines: make([]Line, 0, len(records))}
	for _, r := range records {
		amt := RecordCost(r)
		b.Lines = append(b.Lines, Line{
			Title:    r.Title,
			IRCCode:  r.IRCCode,
			Clause:   r.Clause,
			CostTier: r.CostTier,
			Amount:   amt,
		})
		b.Total += amt
	}
	return b
}

// Batch accumulates section totals. A record attached to several sections is
// counted once in each of them.
type Batch struct {
	sections []Breakdown
	grand    int64
}

// Add prices one section and returns its breakdown.
func (b *Batch) Add(records []catalog.Record) Breakdown {
	br := Estimate(records)
	b.sections = append(b.sections, br)
	b.grand += br.Total
	return br
}

func (b *Batch) Sections() []Breakdown { return b.sections }

// GrandTotal is the sum of all section totals.
func (b *Batch) GrandTotal() int64 { return b.grand }
