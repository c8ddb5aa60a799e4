package calculator

import (
	"ppa/pkg/models"
)

// ClassificationMetrics computes growth, share and PPW range per classification.
// Current sales are market-wide; the growth baseline is the company's baseline-filtered previous sales.
func ClassificationMetrics(unified []models.SkuRecord, classifications []string) []models.SegmentMetrics {
	return segmentTable(unified, classifications, byClassification, companyBaseline)
}

// TierMetrics is ClassificationMetrics grouped by calculated tier.
func TierMetrics(unified []models.SkuRecord, tiers []models.Tier) []models.SegmentMetrics {
	return segmentTable(unified, tiers, byTier, companyBaseline)
}

// MarketClassificationMetrics uses the whole unified set for both periods.
func MarketClassificationMetrics(unified []models.SkuRecord, classifications []string) []models.SegmentMetrics {
	return segmentTable(unified, classifications, byClassification, marketBaseline)
}

// MarketTierMetrics uses the whole unified set for both periods.
func MarketTierMetrics(unified []models.SkuRecord, tiers []models.Tier) []models.SegmentMetrics {
	return segmentTable(unified, tiers, byTier, marketBaseline)
}

func segmentTable[K ~string](unified []models.SkuRecord, keys []K, key func(models.SkuRecord) (K, bool), baseline baselineRule) []models.SegmentMetrics {
	groups := reduceBy(unified, key, baseline)
	total, _ := totals(unified)

	out := make([]models.SegmentMetrics, 0, len(keys))
	for _, k := range keys {
		m := models.SegmentMetrics{Key: string(k)}
		if red := groups[k]; red != nil {
			m.Records = red.Records
			m.CurrentSales = red.Current
			m.PreviousSales = red.Previous
			m.Growth = growth(red.Current, red.Previous)
			m.Share = pct(red.Current, total)
			m.PPW = red.PPW
		}
		out = append(out, m)
	}
	return out
}

// BuildCrossTab builds the tier × classification matrix: company SKU membership per cell, and per
// non-empty cell the market-wide sales, the company share of them and market-wide growth.
func BuildCrossTab(unified []models.SkuRecord, tiers []models.Tier, classifications []string) models.CrossTab {
	groups := reduceBy(unified, byCell, marketBaseline)

	cells := make([][]models.MatrixCell, len(tiers))
	for i, tier := range tiers {
		cells[i] = make([]models.MatrixCell, len(classifications))
		for j, cls := range classifications {
			cell := models.MatrixCell{Tier: tier, Classification: cls, SKUs: []string{}}
			if red := groups[cellKey{tier, cls}]; red != nil {
				cell.Present = true
				cell.SKUs = append(cell.SKUs, red.SKUs...)
				cell.CurrentSales = red.Current
				cell.PreviousSales = red.Previous
				cell.CompanySales = red.Company
				cell.CompanyShare = pct(red.Company, red.Current)
				cell.Growth = growth(red.Current, red.Previous)
			}
			cells[i][j] = cell
		}
	}
	return models.CrossTab{
		Tiers:           append([]models.Tier{}, tiers...),
		Classifications: append([]string{}, classifications...),
		Cells:           cells,
	}
}
