package calculator

import (
	"sort"

	"ppa/pkg/models"
)

// ============================================================================
// GROUP / FILTER / REDUCE
// ============================================================================
// Classification, tier and matrix metrics are one reduction over different
// group keys. The baseline predicate picks which records feed the previous
// period; every record of a group feeds the current period.
// ============================================================================

// baselineRule selects records contributing previous-period sales.
type baselineRule func(models.SkuRecord) bool

// companyBaseline keeps company records with a non-zero prior volume or prior sales.
func companyBaseline(r models.SkuRecord) bool {
	return !r.IsCompetitor && r.HasBaseline()
}

// marketBaseline keeps every record.
func marketBaseline(models.SkuRecord) bool { return true }

// reduction is the outcome of one pass over a group.
type reduction struct {
	Records  int
	Current  float64 // Σ present net sales, all records
	Previous float64 // Σ previous net sales, baseline records only
	Company  float64 // Σ present net sales, company records
	PPW      models.Range
	SKUs     []string // company SKUs, input order
}

// reduceBy groups recs by key and reduces each group. Records for which key reports false are skipped.
func reduceBy[K comparable](recs []models.SkuRecord, key func(models.SkuRecord) (K, bool), baseline baselineRule) map[K]*reduction {
	groups := make(map[K]*reduction)
	for _, r := range recs {
		k, ok := key(r)
		if !ok {
			continue
		}
		red := groups[k]
		if red == nil {
			red = &reduction{}
			groups[k] = red
		}
		red.Records++
		red.Current += r.PresentNetSales.Or0()
		if baseline(r) {
			red.Previous += r.PreviousNetSales.Or0()
		}
		if !r.IsCompetitor {
			red.Company += r.PresentNetSales.Or0()
			red.SKUs = append(red.SKUs, r.SKU)
		}
		red.PPW = red.PPW.Extend(r.PricePerUnit)
	}
	return groups
}

func byClassification(r models.SkuRecord) (string, bool) {
	return r.Classification, r.Classification != ""
}

func byTier(r models.SkuRecord) (models.Tier, bool) {
	return r.CalculatedTier, true
}

type cellKey struct {
	Tier           models.Tier
	Classification string
}

func byCell(r models.SkuRecord) (cellKey, bool) {
	return cellKey{r.CalculatedTier, r.Classification}, r.Classification != ""
}

// Classifications returns the sorted distinct non-empty classifications of recs.
func Classifications(recs []models.SkuRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range recs {
		if r.Classification != "" && !seen[r.Classification] {
			seen[r.Classification] = true
			out = append(out, r.Classification)
		}
	}
	sort.Strings(out)
	return out
}

// Tiers returns the report tiers: Premium, Mainstream, Value, plus Others when a record carries it.
func Tiers(recs []models.SkuRecord) []models.Tier {
	tiers := append([]models.Tier{}, models.DefaultTiers...)
	for _, r := range recs {
		if r.CalculatedTier == models.TierOthers {
			return append(tiers, models.TierOthers)
		}
	}
	return tiers
}

// totals sums present and previous net sales over recs.
func totals(recs []models.SkuRecord) (current, previous float64) {
	for _, r := range recs {
		current += r.PresentNetSales.Or0()
		previous += r.PreviousNetSales.Or0()
	}
	return current, previous
}
