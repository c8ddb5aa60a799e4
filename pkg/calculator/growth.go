package calculator

import (
	"ppa/pkg/models"
)

// GrowthSummary returns volume and net-sales growth for every company SKU, in input order.
// SKUs without a prior baseline are kept with 0% growth.
func GrowthSummary(unified []models.SkuRecord) []models.GrowthRow {
	var rows []models.GrowthRow
	for _, r := range unified {
		if r.IsCompetitor {
			continue
		}
		prevVol, currVol := r.PreviousVolume.Or0(), r.PresentVolume.Or0()
		prevRev, currRev := r.PreviousNetSales.Or0(), r.PresentNetSales.Or0()
		rows = append(rows, models.GrowthRow{
			SKU:              r.SKU,
			PreviousVolume:   prevVol,
			PresentVolume:    currVol,
			VolumeGrowth:     growth(currVol, prevVol),
			PreviousNetSales: prevRev,
			PresentNetSales:  currRev,
			SalesGrowth:      growth(currRev, prevRev),
		})
	}
	return rows
}
