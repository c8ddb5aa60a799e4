// Package report renders an analysis as Markdown, HTML or JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"ppa/pkg/models"
)

// Options control rendering only; they never change the numbers.
type Options struct {
	Currency string
	Title    string
}

func (o Options) title() string {
	if o.Title == "" {
		return "Price Pack Architecture"
	}
	return o.Title
}

// table accumulates a GitHub-flavored Markdown table.
type table struct {
	b strings.Builder
}

func newTable(headers ...string) *table {
	t := &table{}
	t.row(headers...)
	t.b.WriteString("|")
	for range headers {
		t.b.WriteString(" --- |")
	}
	t.b.WriteString("\n")
	return t
}

func (t *table) row(cells ...string) {
	t.b.WriteString("|")
	for _, c := range cells {
		t.b.WriteString(" ")
		t.b.WriteString(cell(c))
		t.b.WriteString(" |")
	}
	t.b.WriteString("\n")
}

func (t *table) String() string { return t.b.String() }

// Markdown writes the full classification report.
func Markdown(w io.Writer, a *models.Analysis, opts Options) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.title())

	for _, warn := range a.Warnings {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", warn)
	}

	writeThresholds(&b, a)
	writeMatrix(&b, a)
	writeGrowth(&b, a, opts)
	writeCompetitiveIndex(&b, a)
	writeMarket(&b, a, opts)
	writeCrossTab(&b, a, opts)
	writeBrands(&b, a, opts)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeThresholds(b *strings.Builder, a *models.Analysis) {
	b.WriteString("## Thresholds\n\n")
	t := newTable("Tier", "PPW from", "PPW up to")
	t.row(string(models.TierValue), "0", decimal3(a.Thresholds.ValueMax))
	t.row(string(models.TierMainstream), decimal3(a.Thresholds.ValueMax), decimal3(a.Thresholds.MainstreamMax))
	t.row(string(models.TierPremium), decimal3(a.Thresholds.MainstreamMax), decimal3(a.Thresholds.PremiumMax))
	b.WriteString(t.String())
	fmt.Fprintf(b, "\nCompany PPW range: %s. Competitor PPW range: %s.\n\n",
		ppwRange(a.Ranges.Company), ppwRange(a.Ranges.Competitor))
	fmt.Fprintf(b, "Shelf capacity: %s SKUs (%d rows).\n\n", printer.Sprintf("%.2f", a.ShelfCapacity), a.ShelfRows)
}

func decimal3(v float64) string {
	return ppw(models.Float(v))
}

func writeMatrix(b *strings.Builder, a *models.Analysis) {
	b.WriteString("## SKU matrix\n\n")
	if len(a.Classifications) == 0 {
		b.WriteString("No classified SKUs.\n\n")
		return
	}
	tierMetrics := indexMetrics(a.TierMetrics)
	classMetrics := indexMetrics(a.ClassificationMetrics)

	headers := append([]string{"Tier"}, a.Classifications...)
	headers = append(headers, "PPW range", "Share", "Growth")
	t := newTable(headers...)
	for _, tier := range a.Tiers {
		row := []string{string(tier)}
		for _, cls := range a.Classifications {
			c, _ := a.Matrix.Cell(tier, cls)
			row = append(row, strings.Join(c.SKUs, ", "))
		}
		m := tierMetrics[string(tier)]
		row = append(row, ppwRange(m.PPW), percent(m.Share), percent(m.Growth))
		t.row(row...)
	}

	pad := []string{"", "", ""}
	growth := []string{"Growth"}
	share := []string{"Share"}
	ranges := []string{"PPW range"}
	for _, cls := range a.Classifications {
		m := classMetrics[cls]
		growth = append(growth, percent(m.Growth))
		share = append(share, percent(m.Share))
		ranges = append(ranges, ppwRange(m.PPW))
	}
	t.row(append(growth, pad...)...)
	t.row(append(share, pad...)...)
	t.row(append(ranges, pad...)...)
	b.WriteString(t.String())
	b.WriteString("\n")
}

func indexMetrics(rows []models.SegmentMetrics) map[string]models.SegmentMetrics {
	out := make(map[string]models.SegmentMetrics, len(rows))
	for _, r := range rows {
		out[r.Key] = r
	}
	return out
}

func writeGrowth(b *strings.Builder, a *models.Analysis, opts Options) {
	b.WriteString("## Growth summary\n\n")
	if len(a.Growth) == 0 {
		b.WriteString("No company SKUs.\n\n")
		return
	}
	t := newTable("SKU", "Previous volume", "Present volume", "Volume growth",
		"Previous net sales", "Present net sales", "Sales growth")
	for _, g := range a.Growth {
		t.row(g.SKU,
			printer.Sprintf("%.0f", g.PreviousVolume), printer.Sprintf("%.0f", g.PresentVolume), percent(g.VolumeGrowth),
			money(opts.Currency, g.PreviousNetSales), money(opts.Currency, g.PresentNetSales), percent(g.SalesGrowth))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
}

func writeCompetitiveIndex(b *strings.Builder, a *models.Analysis) {
	b.WriteString("## Competitive index\n\n")
	if len(a.CompetitiveIndex) == 0 {
		b.WriteString("No segment has both company and competitor SKUs.\n\n")
		return
	}
	t := newTable("Classification", "Tier", "SKU", "Company PPW", "Avg competitor PPW", "Competitors", "Index")
	for _, r := range a.CompetitiveIndex {
		t.row(r.Classification, string(r.Tier), r.SKU, ppw(r.CompanyPPW), ppw(r.AvgCompetitorPPW),
			fmt.Sprint(r.Competitors), index(r.Index))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
}

func writeMarket(b *strings.Builder, a *models.Analysis, opts Options) {
	b.WriteString("## Market summary\n\n")
	fmt.Fprintf(b, "Total market: %s current, %s previous.\n\n",
		money(opts.Currency, a.TotalCurrentSales), money(opts.Currency, a.TotalPreviousSales))
	for _, section := range []struct {
		label string
		rows  []models.SegmentMetrics
	}{
		{"Classification", a.MarketClassifications},
		{"Tier", a.MarketTiers},
	} {
		t := newTable(section.label, "Records", "Previous sales", "Current sales", "Growth", "Share", "PPW range")
		for _, m := range section.rows {
			t.row(m.Key, fmt.Sprint(m.Records), money(opts.Currency, m.PreviousSales),
				money(opts.Currency, m.CurrentSales), percent(m.Growth), percent(m.Share), ppwRange(m.PPW))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}
}

func writeCrossTab(b *strings.Builder, a *models.Analysis, opts Options) {
	b.WriteString("## Tier × classification\n\n")
	if len(a.Matrix.Classifications) == 0 {
		b.WriteString("No classified SKUs.\n\n")
		return
	}
	t := newTable(append([]string{"Tier"}, a.Matrix.Classifications...)...)
	for i, tier := range a.Matrix.Tiers {
		row := []string{string(tier)}
		for _, c := range a.Matrix.Cells[i] {
			if !c.Present {
				row = append(row, "–")
				continue
			}
			row = append(row, fmt.Sprintf("%s (company %s, growth %s)",
				money(opts.Currency, c.CurrentSales), percent(c.CompanyShare), percent(c.Growth)))
		}
		t.row(row...)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
}

func writeBrands(b *strings.Builder, a *models.Analysis, opts Options) {
	b.WriteString("## Brand share\n\n")
	if len(a.Brands) == 0 {
		b.WriteString("No branded SKUs.\n\n")
		return
	}
	t := newTable("Brand", "Previous sales", "Current sales", "Previous share", "Current share", "Change (bps)")
	for _, r := range a.Brands {
		t.row(r.Brand, money(opts.Currency, r.PreviousSales), money(opts.Currency, r.CurrentSales),
			percent(r.PreviousShare), percent(r.CurrentShare), bps(r.BPSChange))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
}

// Ranges writes the PPW range of each dataset, shown before thresholds are chosen.
func Ranges(w io.Writer, r models.DatasetRanges) error {
	t := newTable("Dataset", "PPW range")
	t.row("Company", ppwRange(r.Company))
	t.row("Competitor", ppwRange(r.Competitor))
	_, err := io.WriteString(w, t.String())
	return err
}

// Pairwise writes the index of one ad-hoc SKU comparison.
func Pairwise(w io.Writer, p models.PairwiseIndex) error {
	t := newTable("SKU", "PPW")
	t.row(p.SKUA, ppw(p.PPWA))
	t.row(p.SKUB, ppw(p.PPWB))
	_, err := fmt.Fprintf(w, "%s\nIndex (%s / %s): %s\n", t.String(), cell(p.SKUA), cell(p.SKUB), index(p.Index))
	return err
}
