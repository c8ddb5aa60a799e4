package models

import (
	"database/sql"
	"encoding/json"
	"math"
)

/*
LOAD → raw rows as handed over by the ingestion layer (CSV, XLSX, SQL).
*/

// RawRecord is one input row keyed by column header, e.g. RawRecord{"SKU": "A1", "Price": "10"}.
type RawRecord map[string]string

// Column headers of the company and competitor datasets.
const (
	ColSKU              = "SKU"
	ColPackSize         = "Pack Size"
	ColPrice            = "Price"
	ColWashes           = "Number of Washes"
	ColClassification   = "Classification"
	ColPriceTier        = "Price Tier"
	ColParentBrand      = "Parent Brand"
	ColPreviousVolume   = "Previous Volume"
	ColPresentVolume    = "Present Volume"
	ColPreviousNetSales = "Previous Net Sales"
	ColPresentNetSales  = "Present Net Sales"
	ColShelfRow         = "Shelf Row"
)

// BaseColumns are required in both datasets.
var BaseColumns = []string{
	ColSKU, ColPackSize, ColPrice, ColWashes,
	ColClassification, ColPriceTier, ColParentBrand,
}

// CompanyColumns are required in the company dataset. They are also the template headers of both datasets.
var CompanyColumns = append(append([]string{}, BaseColumns...),
	ColPreviousVolume, ColPresentVolume, ColPreviousNetSales, ColPresentNetSales, ColShelfRow,
)

// NullFloat is a number that may be missing (unparseable input) or undefined (division by zero).
// It scans from SQL like sql.NullFloat64 and encodes as JSON null when not Valid.
type NullFloat struct {
	sql.NullFloat64
}

// Float wraps v. Non-finite values become missing.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{sql.NullFloat64{Float64: v, Valid: true}}
}

// Or0 returns the value, or 0 when missing (sum-based arithmetic).
func (n NullFloat) Or0() float64 {
	if !n.Valid {
		return 0
	}
	return n.Float64
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Tier is a price tier assigned from price-per-unit thresholds.
type Tier string

const (
	TierValue      Tier = "Value"
	TierMainstream Tier = "Mainstream"
	TierPremium    Tier = "Premium"
	TierOthers     Tier = "Others"
)

// DefaultTiers is the report order of tiers. Others is appended only when present in the data.
var DefaultTiers = []Tier{TierPremium, TierMainstream, TierValue}

// Rank orders tiers from cheapest (0) to Others (3). Unknown tiers rank -1.
func (t Tier) Rank() int {
	switch t {
	case TierValue:
		return 0
	case TierMainstream:
		return 1
	case TierPremium:
		return 2
	case TierOthers:
		return 3
	}
	return -1
}

// ThresholdSet holds the upper bound of Value, Mainstream and Premium, in price-per-unit.
type ThresholdSet struct {
	ValueMax      float64 `json:"value_max" yaml:"value_max"`
	MainstreamMax float64 `json:"mainstream_max" yaml:"mainstream_max"`
	PremiumMax    float64 `json:"premium_max" yaml:"premium_max"`
}

// Monotonic reports whether the boundaries are strictly increasing.
func (t ThresholdSet) Monotonic() bool {
	return t.ValueMax < t.MainstreamMax && t.MainstreamMax < t.PremiumMax
}

// SkuRecord is one normalized SKU row plus its derived fields.
type SkuRecord struct {
	SKU               string    `json:"sku"`
	PackSize          string    `json:"pack_size"`
	Price             NullFloat `json:"price"`
	WashCount         NullFloat `json:"wash_count"`
	Classification    string    `json:"classification"`
	DeclaredPriceTier string    `json:"declared_price_tier"`
	ParentBrand       string    `json:"parent_brand,omitempty"` // empty = no brand
	ShelfRow          NullFloat `json:"shelf_row"`
	PreviousVolume    NullFloat `json:"previous_volume"`
	PresentVolume     NullFloat `json:"present_volume"`
	PreviousNetSales  NullFloat `json:"previous_net_sales"`
	PresentNetSales   NullFloat `json:"present_net_sales"`

	// Derived
	PricePerUnit   NullFloat `json:"price_per_unit"`
	CalculatedTier Tier      `json:"calculated_tier"`
	IsCompetitor   bool      `json:"is_competitor"`
}

// HasBaseline is false when both previous volume and previous net sales are zero or missing.
func (r SkuRecord) HasBaseline() bool {
	return r.PreviousVolume.Or0() != 0 || r.PreviousNetSales.Or0() != 0
}

/*
COMPUTE → result tables of one classification run.
*/

// Range is a [Min, Max] price-per-unit interval. Valid is false when no defined value contributed.
type Range struct {
	Min   float64
	Max   float64
	Valid bool
}

// Extend widens the range with v; undefined values are ignored.
func (r Range) Extend(v NullFloat) Range {
	if !v.Valid {
		return r
	}
	if !r.Valid {
		return Range{Min: v.Float64, Max: v.Float64, Valid: true}
	}
	r.Min = math.Min(r.Min, v.Float64)
	r.Max = math.Max(r.Max, v.Float64)
	return r
}

func (r Range) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal([2]float64{r.Min, r.Max})
}

func (r *Range) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Range{}
		return nil
	}
	var bounds [2]float64
	if err := json.Unmarshal(b, &bounds); err != nil {
		return err
	}
	*r = Range{Min: bounds[0], Max: bounds[1], Valid: true}
	return nil
}

// SegmentMetrics holds growth, share and PPW range of one classification or tier.
type SegmentMetrics struct {
	Key           string  `json:"key"`
	Records       int     `json:"records"`
	CurrentSales  float64 `json:"current_sales"`
	PreviousSales float64 `json:"previous_sales"`
	Growth        float64 `json:"growth_pct"`
	Share         float64 `json:"share_pct"`
	PPW           Range   `json:"ppw_range"`
}

// MatrixCell is one (tier, classification) segment.
// SKUs lists company members; the sales figures cover company and competitor records.
type MatrixCell struct {
	Tier           Tier     `json:"tier"`
	Classification string   `json:"classification"`
	SKUs           []string `json:"skus"`
	Present        bool     `json:"present"` // false when no unified record falls in the cell
	CurrentSales   float64  `json:"current_sales"`
	PreviousSales  float64  `json:"previous_sales"`
	CompanySales   float64  `json:"company_sales"`
	CompanyShare   float64  `json:"company_share_pct"`
	Growth         float64  `json:"growth_pct"`
}

// CrossTab is the tier × classification matrix. Cells[i][j] is Tiers[i] × Classifications[j].
type CrossTab struct {
	Tiers           []Tier         `json:"tiers"`
	Classifications []string       `json:"classifications"`
	Cells           [][]MatrixCell `json:"cells"`
}

// Cell returns the cell for (tier, cls).
func (c CrossTab) Cell(tier Tier, cls string) (MatrixCell, bool) {
	for i, t := range c.Tiers {
		if t != tier {
			continue
		}
		for j, k := range c.Classifications {
			if k == cls {
				return c.Cells[i][j], true
			}
		}
	}
	return MatrixCell{}, false
}

// Membership returns tier → classification → company SKUs.
func (c CrossTab) Membership() map[Tier]map[string][]string {
	out := make(map[Tier]map[string][]string, len(c.Tiers))
	for i, t := range c.Tiers {
		row := make(map[string][]string, len(c.Classifications))
		for j, cls := range c.Classifications {
			row[cls] = c.Cells[i][j].SKUs
		}
		out[t] = row
	}
	return out
}

// CompetitiveIndexRow compares one company SKU with the competitor average of its segment.
type CompetitiveIndexRow struct {
	Classification   string    `json:"classification"`
	Tier             Tier      `json:"tier"`
	SKU              string    `json:"sku"`
	CompanyPPW       NullFloat `json:"company_ppw"`
	AvgCompetitorPPW NullFloat `json:"avg_competitor_ppw"`
	Competitors      int       `json:"competitors"`
	Index            NullFloat `json:"index"`
}

// PairwiseIndex is the ad-hoc PPW ratio of two SKUs.
type PairwiseIndex struct {
	SKUA  string    `json:"sku_a"`
	SKUB  string    `json:"sku_b"`
	PPWA  NullFloat `json:"ppw_a"`
	PPWB  NullFloat `json:"ppw_b"`
	Index NullFloat `json:"index"`
}

// BrandShareRow is the prior/current market share of one parent brand.
type BrandShareRow struct {
	Brand         string  `json:"brand"`
	PreviousSales float64 `json:"previous_sales"`
	CurrentSales  float64 `json:"current_sales"`
	PreviousShare float64 `json:"previous_share_pct"`
	CurrentShare  float64 `json:"current_share_pct"`
	BPSChange     float64 `json:"bps_change"`
}

// GrowthRow is the volume and net-sales growth of one company SKU.
type GrowthRow struct {
	SKU              string  `json:"sku"`
	PreviousVolume   float64 `json:"previous_volume"`
	PresentVolume    float64 `json:"present_volume"`
	VolumeGrowth     float64 `json:"volume_growth_pct"`
	PreviousNetSales float64 `json:"previous_net_sales"`
	PresentNetSales  float64 `json:"present_net_sales"`
	SalesGrowth      float64 `json:"sales_growth_pct"`
}

// ScatterPoint is one SKU of the retail price vs price-per-unit chart.
type ScatterPoint struct {
	SKU          string  `json:"sku"`
	Price        float64 `json:"price"`
	PPW          float64 `json:"ppw"`
	IsCompetitor bool    `json:"is_competitor"`
}

// DatasetRanges is the PPW range of each input set, used to choose thresholds.
type DatasetRanges struct {
	Company    Range `json:"company"`
	Competitor Range `json:"competitor"`
}

// Analysis is the immutable result bundle of one classification run.
type Analysis struct {
	Thresholds    ThresholdSet  `json:"thresholds"`
	ShelfRows     int           `json:"shelf_rows"`
	ShelfCapacity float64       `json:"shelf_capacity"`
	Ranges        DatasetRanges `json:"ppw_ranges"`

	Records         []SkuRecord `json:"records"`
	Classifications []string    `json:"classifications"`
	Tiers           []Tier      `json:"tiers"`

	TotalCurrentSales  float64 `json:"total_current_sales"`
	TotalPreviousSales float64 `json:"total_previous_sales"`

	// Company-only previous baseline, market-wide current sales.
	ClassificationMetrics []SegmentMetrics `json:"classification_metrics"`
	TierMetrics           []SegmentMetrics `json:"tier_metrics"`
	// Market-wide previous and current sales.
	MarketClassifications []SegmentMetrics `json:"market_classifications"`
	MarketTiers           []SegmentMetrics `json:"market_tiers"`

	Matrix           CrossTab              `json:"matrix"`
	CompetitiveIndex []CompetitiveIndexRow `json:"competitive_index"`
	Brands           []BrandShareRow       `json:"brands"`
	Growth           []GrowthRow           `json:"growth"`
	Scatter          []ScatterPoint        `json:"scatter"`

	Warnings []string `json:"warnings,omitempty"`
}

/*
CONFIG → parameters of one run
*/
// Config holds the parameters passed to the calculator.
type Config struct {
	Thresholds ThresholdSet
	ShelfRows  int // 0 = default of 3
}
