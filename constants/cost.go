package constants

import "strings"

// CostTier is the coarse cost bucket of an intervention.
type CostTier string

const (
	CostLow    CostTier = "Low"
	CostMedium CostTier = "Medium"
	CostHigh   CostTier = "High"
)

// tierCosts holds representative estimates in currency-agnostic integer units.
var tierCosts = map[CostTier]int64{
	CostLow:    10000,
	CostMedium: 50000,
	CostHigh:   200000,
}

// TierCost returns the estimate for a tier label (case-insensitive); unknown tiers map to 0.
func TierCost(tier string) int64 {
	t, ok := CanonicalTier(tier)
	if !ok {
		return 0
	}
	return tierCosts[t]
}

// CanonicalTier normalizes "low", " MEDIUM " etc. to a CostTier.
func CanonicalTier(input string) (CostTier, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "low":
		return CostLow, true
	case "medium", "med":
		return CostMedium, true
	case "high":
		return CostHigh, true
	}
	return "", false
}
