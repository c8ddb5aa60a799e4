package calculator

import (
	"fmt"

	"go.uber.org/zap"

	"ppa/pkg/models"
	"ppa/pkg/normalize"
)

// Option configures a run.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes run diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run normalizes both raw datasets and analyzes them. It fails with a
// normalize.ValidationError before any metric is computed when the company
// data has more than four classifications.
func Run(company, competitor []models.RawRecord, cfg models.Config, opts ...Option) (*models.Analysis, error) {
	if err := normalize.Validate(company); err != nil {
		return nil, fmt.Errorf("company data: %w", err)
	}
	return Analyze(normalize.Records(company, false), normalize.Records(competitor, true), cfg, opts...)
}

// Analyze runs the classification pipeline on normalized records. It is a pure
// function of its inputs: equal inputs give equal results.
func Analyze(company, competitor []models.SkuRecord, cfg models.Config, opts ...Option) (*models.Analysis, error) {
	o := applyOptions(opts)
	log := o.logger

	if err := normalize.ValidateRecords(company); err != nil {
		return nil, fmt.Errorf("company data: %w", err)
	}
	shelfRows := cfg.ShelfRows
	if shelfRows <= 0 {
		shelfRows = defaultShelfRows
	}

	th := cfg.Thresholds
	var warnings []string
	if !th.Monotonic() {
		msg := fmt.Sprintf("thresholds are not strictly increasing (%g, %g, %g); some tiers may be unreachable",
			th.ValueMax, th.MainstreamMax, th.PremiumMax)
		warnings = append(warnings, msg)
		log.Warn("non-monotonic thresholds",
			zap.Float64("value_max", th.ValueMax),
			zap.Float64("mainstream_max", th.MainstreamMax),
			zap.Float64("premium_max", th.PremiumMax))
	}

	unified := Unify(Enrich(company, th), Enrich(competitor, th))
	classifications := Classifications(unified)
	tiers := Tiers(unified)

	if n := countUndefinedPPW(unified); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d records have no price per unit (missing price or wash count)", n))
		log.Warn("records without price per unit", zap.Int("count", n))
	}

	totalCurr, totalPrev := totals(unified)
	a := &models.Analysis{
		Thresholds:    th,
		ShelfRows:     shelfRows,
		ShelfCapacity: ShelfCapacity(shelfRows),
		Ranges:        DatasetRanges(company, competitor),

		Records:         unified,
		Classifications: classifications,
		Tiers:           tiers,

		TotalCurrentSales:  totalCurr,
		TotalPreviousSales: totalPrev,

		ClassificationMetrics: ClassificationMetrics(unified, classifications),
		TierMetrics:           TierMetrics(unified, tiers),
		MarketClassifications: MarketClassificationMetrics(unified, classifications),
		MarketTiers:           MarketTierMetrics(unified, tiers),

		Matrix:           BuildCrossTab(unified, tiers, classifications),
		CompetitiveIndex: CompetitiveIndex(unified, classifications, tiers),
		Brands:           BrandShares(unified),
		Growth:           GrowthSummary(unified),
		Scatter:          Scatter(unified),

		Warnings: warnings,
	}

	for _, row := range a.CompetitiveIndex {
		if !row.AvgCompetitorPPW.Valid || row.AvgCompetitorPPW.Float64 == 0 {
			log.Warn("competitor average undefined",
				zap.String("classification", row.Classification),
				zap.String("tier", string(row.Tier)))
			break
		}
	}

	log.Info("classification run",
		zap.Int("company", len(company)),
		zap.Int("competitor", len(competitor)),
		zap.Int("classifications", len(classifications)),
		zap.Any("tiers", tierCounts(unified)),
		zap.Int("index_rows", len(a.CompetitiveIndex)),
		zap.Int("brands", len(a.Brands)))

	return a, nil
}

func countUndefinedPPW(recs []models.SkuRecord) int {
	n := 0
	for _, r := range recs {
		if !r.PricePerUnit.Valid {
			n++
		}
	}
	return n
}

func tierCounts(recs []models.SkuRecord) map[models.Tier]int {
	counts := make(map[models.Tier]int)
	for _, r := range recs {
		counts[r.CalculatedTier]++
	}
	return counts
}
