package calculator

import (
	"errors"
	"fmt"

	"ppa/pkg/models"
)

var (
	// ErrSameSkuSelected is returned when a pairwise comparison names one SKU twice.
	ErrSameSkuSelected = errors.New("select two different SKUs")
	// ErrUnknownSku is returned when a pairwise comparison names a SKU absent from the unified set.
	ErrUnknownSku = errors.New("unknown SKU")
)

// CompetitiveIndex compares every company SKU with the mean competitor PPW of its
// (classification, tier) segment. Segments without competitor records produce no rows.
// The index is undefined when the company PPW or the competitor mean is undefined or the mean is 0.
func CompetitiveIndex(unified []models.SkuRecord, classifications []string, tiers []models.Tier) []models.CompetitiveIndexRow {
	type segment struct {
		company     []models.SkuRecord
		competitors int
		ppwSum      float64
		ppwCount    int
	}
	segments := make(map[cellKey]*segment)
	for _, r := range unified {
		k, ok := byCell(r)
		if !ok {
			continue
		}
		s := segments[k]
		if s == nil {
			s = &segment{}
			segments[k] = s
		}
		if !r.IsCompetitor {
			s.company = append(s.company, r)
			continue
		}
		s.competitors++
		if r.PricePerUnit.Valid {
			s.ppwSum += r.PricePerUnit.Float64
			s.ppwCount++
		}
	}

	var rows []models.CompetitiveIndexRow
	for _, cls := range classifications {
		for _, tier := range tiers {
			s := segments[cellKey{tier, cls}]
			if s == nil || s.competitors == 0 {
				continue
			}
			var avg models.NullFloat
			if s.ppwCount > 0 {
				avg = models.Float(s.ppwSum / float64(s.ppwCount))
			}
			for _, r := range s.company {
				rows = append(rows, models.CompetitiveIndexRow{
					Classification:   cls,
					Tier:             tier,
					SKU:              r.SKU,
					CompanyPPW:       r.PricePerUnit,
					AvgCompetitorPPW: avg,
					Competitors:      s.competitors,
					Index:            ratio(r.PricePerUnit, avg),
				})
			}
		}
	}
	return rows
}

// Pairwise computes PPW(a) / PPW(b) over the unified set. A SKU present more than once
// resolves to its last occurrence.
func Pairwise(unified []models.SkuRecord, a, b string) (models.PairwiseIndex, error) {
	if a == b {
		return models.PairwiseIndex{}, ErrSameSkuSelected
	}
	ppw := make(map[string]models.NullFloat, len(unified))
	for _, r := range unified {
		ppw[r.SKU] = r.PricePerUnit
	}
	pa, ok := ppw[a]
	if !ok {
		return models.PairwiseIndex{}, fmt.Errorf("sku a %q: %w", a, ErrUnknownSku)
	}
	pb, ok := ppw[b]
	if !ok {
		return models.PairwiseIndex{}, fmt.Errorf("sku b %q: %w", b, ErrUnknownSku)
	}
	return models.PairwiseIndex{
		SKUA:  a,
		SKUB:  b,
		PPWA:  pa,
		PPWB:  pb,
		Index: ratio(pa, pb),
	}, nil
}

// SKUs lists the distinct SKUs of the unified set in input order.
func SKUs(unified []models.SkuRecord) []string {
	seen := make(map[string]bool, len(unified))
	var out []string
	for _, r := range unified {
		if !seen[r.SKU] {
			seen[r.SKU] = true
			out = append(out, r.SKU)
		}
	}
	return out
}

func ratio(num, den models.NullFloat) models.NullFloat {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return models.NullFloat{}
	}
	return models.Float(num.Float64 / den.Float64)
}
