// Package normalize turns raw field-mappings into typed SKU records.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ppa/pkg/models"
)

// MaxClassifications is the largest number of distinct company classifications a run accepts.
const MaxClassifications = 4

// ErrTooManyClassifications is matched by errors.Is on a *ValidationError.
var ErrTooManyClassifications = errors.New("too many classifications")

// ValidationError rejects the company dataset before any metric is computed.
type ValidationError struct {
	Err    error
	Count  int
	Limit  int
	Values []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: company data has %d distinct classifications (max %d): %s",
		e.Err, e.Count, e.Limit, strings.Join(e.Values, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Number parses a numeric field. Blank, malformed and non-finite input is missing, never an error.
func Number(s string) models.NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.NullFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.NullFloat{}
	}
	return models.Float(v)
}

// Record converts one raw row. Derived fields are left for the calculator.
func Record(raw models.RawRecord, competitor bool) models.SkuRecord {
	text := func(col string) string { return strings.TrimSpace(raw[col]) }
	num := func(col string) models.NullFloat { return Number(raw[col]) }

	return models.SkuRecord{
		SKU:               text(models.ColSKU),
		PackSize:          text(models.ColPackSize),
		Price:             num(models.ColPrice),
		WashCount:         num(models.ColWashes),
		Classification:    text(models.ColClassification),
		DeclaredPriceTier: text(models.ColPriceTier),
		ParentBrand:       text(models.ColParentBrand),
		ShelfRow:          num(models.ColShelfRow),
		PreviousVolume:    num(models.ColPreviousVolume),
		PresentVolume:     num(models.ColPresentVolume),
		PreviousNetSales:  num(models.ColPreviousNetSales),
		PresentNetSales:   num(models.ColPresentNetSales),
		IsCompetitor:      competitor,
	}
}

// Records converts a whole dataset, tagging every record with its source.
func Records(rows []models.RawRecord, competitor bool) []models.SkuRecord {
	out := make([]models.SkuRecord, 0, len(rows))
	for _, raw := range rows {
		out = append(out, Record(raw, competitor))
	}
	return out
}

// Validate checks the raw company dataset.
func Validate(company []models.RawRecord) error {
	values := make([]string, 0, len(company))
	for _, raw := range company {
		values = append(values, strings.TrimSpace(raw[models.ColClassification]))
	}
	return checkClassifications(values)
}

// ValidateRecords checks already normalized company records. Competitor records are ignored.
func ValidateRecords(company []models.SkuRecord) error {
	values := make([]string, 0, len(company))
	for _, r := range company {
		if !r.IsCompetitor {
			values = append(values, r.Classification)
		}
	}
	return checkClassifications(values)
}

// checkClassifications counts distinct non-empty values; blanks are missing, not a category.
func checkClassifications(values []string) error {
	seen := make(map[string]bool)
	var distinct []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		distinct = append(distinct, v)
	}
	if len(distinct) > MaxClassifications {
		return &ValidationError{
			Err:    ErrTooManyClassifications,
			Count:  len(distinct),
			Limit:  MaxClassifications,
			Values: distinct,
		}
	}
	return nil
}
