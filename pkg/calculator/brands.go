package calculator

import (
	"sort"

	"ppa/pkg/models"
)

// BrandShares computes previous and current market share per parent brand and the change in
// basis points. Records without a brand count toward the totals only. Rows are ordered by current
// share, descending, then by brand name.
func BrandShares(unified []models.SkuRecord) []models.BrandShareRow {
	totalCurr, totalPrev := totals(unified)

	byBrand := make(map[string]*models.BrandShareRow)
	for _, r := range unified {
		if r.ParentBrand == "" {
			continue
		}
		row := byBrand[r.ParentBrand]
		if row == nil {
			row = &models.BrandShareRow{Brand: r.ParentBrand}
			byBrand[r.ParentBrand] = row
		}
		row.PreviousSales += r.PreviousNetSales.Or0()
		row.CurrentSales += r.PresentNetSales.Or0()
	}

	rows := make([]models.BrandShareRow, 0, len(byBrand))
	for _, row := range byBrand {
		row.PreviousShare = pct(row.PreviousSales, totalPrev)
		row.CurrentShare = pct(row.CurrentSales, totalCurr)
		row.BPSChange = (row.CurrentShare - row.PreviousShare) * 100
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CurrentShare != rows[j].CurrentShare {
			return rows[i].CurrentShare > rows[j].CurrentShare
		}
		return rows[i].Brand < rows[j].Brand
	})
	return rows
}
