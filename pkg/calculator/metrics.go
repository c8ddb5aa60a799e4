package calculator

import (
	"ppa/pkg/models"
)

// PricePerUnit is price / wash count. Undefined when either is missing or the wash count is 0.
func PricePerUnit(r models.SkuRecord) models.NullFloat {
	if !r.Price.Valid || !r.WashCount.Valid || r.WashCount.Float64 == 0 {
		return models.NullFloat{}
	}
	return models.Float(r.Price.Float64 / r.WashCount.Float64)
}

// AssignTier maps a defined price-per-unit to its tier. Boundary values belong to the lower tier.
func AssignTier(ppw float64, th models.ThresholdSet) models.Tier {
	switch {
	case ppw <= th.ValueMax:
		return models.TierValue
	case ppw <= th.MainstreamMax:
		return models.TierMainstream
	case ppw <= th.PremiumMax:
		return models.TierPremium
	default:
		return models.TierOthers
	}
}

// TierOf classifies a possibly undefined PPW. Undefined fails every boundary test and lands in Others,
// never in the cheapest tier.
func TierOf(ppw models.NullFloat, th models.ThresholdSet) models.Tier {
	if !ppw.Valid {
		return models.TierOthers
	}
	return AssignTier(ppw.Float64, th)
}

// Enrich returns copies of recs with PricePerUnit and CalculatedTier set.
func Enrich(recs []models.SkuRecord, th models.ThresholdSet) []models.SkuRecord {
	out := make([]models.SkuRecord, len(recs))
	for i, r := range recs {
		r.PricePerUnit = PricePerUnit(r)
		r.CalculatedTier = TierOf(r.PricePerUnit, th)
		out[i] = r
	}
	return out
}

// Unify concatenates the enriched company and competitor sets.
func Unify(company, competitor []models.SkuRecord) []models.SkuRecord {
	out := make([]models.SkuRecord, 0, len(company)+len(competitor))
	for _, r := range company {
		r.IsCompetitor = false
		out = append(out, r)
	}
	for _, r := range competitor {
		r.IsCompetitor = true
		out = append(out, r)
	}
	return out
}

// pct is num/den×100, with 0 when den is 0.
func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// growth is the percentage change from prev to curr, 0 without a baseline.
func growth(curr, prev float64) float64 {
	return pct(curr-prev, prev)
}
