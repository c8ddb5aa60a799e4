package calculator

import (
	"ppa/pkg/models"
)

const (
	skusPerShelfRow  = 3
	shelfUtilisation = 0.75
	defaultShelfRows = 3
)

// ShelfCapacity is the effective number of SKUs a shelf holds: rows × 3 SKUs × 75%.
func ShelfCapacity(rows int) float64 {
	return float64(rows) * skusPerShelfRow * shelfUtilisation
}

// PPWRange is the price-per-unit range of recs, computing PPW when it is not yet derived.
func PPWRange(recs []models.SkuRecord) models.Range {
	var rg models.Range
	for _, r := range recs {
		ppw := r.PricePerUnit
		if !ppw.Valid {
			ppw = PricePerUnit(r)
		}
		rg = rg.Extend(ppw)
	}
	return rg
}

// DatasetRanges reports the PPW range of each input set before thresholds are chosen.
func DatasetRanges(company, competitor []models.SkuRecord) models.DatasetRanges {
	return models.DatasetRanges{
		Company:    PPWRange(company),
		Competitor: PPWRange(competitor),
	}
}

// Scatter returns the price vs PPW points of the unified set. Records with undefined PPW or price are skipped.
func Scatter(unified []models.SkuRecord) []models.ScatterPoint {
	var pts []models.ScatterPoint
	for _, r := range unified {
		if !r.PricePerUnit.Valid || !r.Price.Valid {
			continue
		}
		pts = append(pts, models.ScatterPoint{
			SKU:          r.SKU,
			Price:        r.Price.Float64,
			PPW:          r.PricePerUnit.Float64,
			IsCompetitor: r.IsCompetitor,
		})
	}
	return pts
}
