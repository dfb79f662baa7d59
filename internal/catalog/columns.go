package catalog

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
)

// column aliases, checked in order; names are compared after trim + lowercase.
var (
	titleCols       = []string{"title", "intervention", "name"}
	descriptionCols = []string{"description", "details"}
	keywordCols     = []string{"keywords", "keyword"}
	codeCols        = []string{"irc_code", "code"}
	clauseCols      = []string{"clause"}
	tierCols        = []string{"cost", "cost_level", "cost_tier"}
	estimateCols    = []string{"cost_estimate", "cost_estimate_in_inr", "estimated_cost"}
	priorityCols    = []string{"priority"}
	effectCols      = []string{"effectiveness"}
	complexityCols  = []string{"complexity"}
)

// header resolves normalized column names to row indexes.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		if _, exists := h[name]; !exists {
			h[name] = i
		}
	}
	return h
}

func (h header) has(aliases []string) bool {
	for _, a := range aliases {
		if _, ok := h[a]; ok {
			return true
		}
	}
	return false
}

func (h header) get(row []string, aliases []string) string {
	for _, a := range aliases {
		if i, ok := h[a]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

// recordsFromRows maps tabular rows onto records. Rows without any title or
// description are skipped; an untitled row takes its title from the
// description. A missing keywords column leaves every record with empty
// keywords.
func recordsFromRows(cols []string, rows [][]string) []Record {
	h := newHeader(cols)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := Record{
			Title:         h.get(row, titleCols),
			Description:   h.get(row, descriptionCols),
			IRCCode:       h.get(row, codeCols),
			Clause:        h.get(row, clauseCols),
			CostTier:      h.get(row, tierCols),
			Priority:      h.get(row, priorityCols),
			Effectiveness: h.get(row, effectCols),
			Complexity:    h.get(row, complexityCols),
		}
		if r.Title == "" && r.Description == "" {
			continue
		}
		if r.Title == "" {
			r.Title = titleFromDescription(r.Description)
		}
		if h.has(keywordCols) {
			r.Keywords = ParseKeywords(h.get(row, keywordCols))
		}
		if tier, ok := constants.CanonicalTier(r.CostTier); ok {
			r.CostTier = string(tier)
		}
		r.EstimatedCost = parseCost(h.get(row, estimateCols))
		if r.EstimatedCost <= 0 {
			r.EstimatedCost = constants.TierCost(r.CostTier)
		}
		out = append(out, r)
	}
	return out
}

const maxDerivedTitle = 60

func titleFromDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) <= maxDerivedTitle {
		return desc
	}
	return strings.TrimSpace(string(runes[:maxDerivedTitle-3])) + "..."
}

// parseCost accepts "50000", "50,000", "₹ 50,000.00"; anything else is 0.
func parseCost(s string) int64 {
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f)
}
