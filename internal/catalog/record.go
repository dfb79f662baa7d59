// Package catalog loads the static table of road-safety interventions.
package catalog

import (
	"strings"
)

// Record is one intervention row. Records are immutable once loaded.
type Record struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Keywords      []string `json:"keywords"`
	IRCCode       string   `json:"irc_code,omitempty"`
	Clause        string   `json:"clause,omitempty"`
	CostTier      string   `json:"cost_tier,omitempty"`
	EstimatedCost int64    `json:"estimated_cost"`
	Priority      string   `json:"priority,omitempty"`
	Effectiveness string   `json:"effectiveness,omitempty"`
	Complexity    string   `json:"complexity,omitempty"`
}

// HasKeyword reports whether token is one of the record's keywords.
func (r Record) HasKeyword(token string) bool {
	for _, k := range r.Keywords {
		if k == token {
			return true
		}
	}
	return false
}

// Catalog is an ordered, read-only sequence of records, safe for concurrent readers.
type Catalog struct {
	records []Record
	source  string
}

// New builds a catalog from records; the slice is copied.
func New(source string, records []Record) *Catalog {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Catalog{records: cp, source: source}
}

// Empty returns a catalog without records.
func Empty() *Catalog { return &Catalog{source: "empty"} }

// Records returns a copy of the records in catalog order.
func (c *Catalog) Records() []Record {
	if c == nil {
		return nil
	}
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Each calls fn for every record in catalog order until fn returns false.
func (c *Catalog) Each(fn func(i int, r Record) bool) {
	if c == nil {
		return
	}
	for i, r := range c.records {
		if !fn(i, r) {
			return
		}
	}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// ParseKeywords splits a comma-separated keyword field into trimmed, lowercased,
// de-duplicated tokens; empty tokens are dropped.
func ParseKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		k := strings.ToLower(strings.TrimSpace(p))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
