package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppa/pkg/models"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"10", 10, true},
		{" 0.25 ", 0.25, true},
		{"-3", -3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,200", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got := Number(tt.in)
		assert.Equal(t, tt.valid, got.Valid, "Number(%q).Valid", tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, got.Float64, "Number(%q)", tt.in)
		}
	}
}

func TestRecord_MalformedFieldsBecomeMissing(t *testing.T) {
	raw := models.RawRecord{
		models.ColSKU:              " A1 ",
		models.ColPrice:            "10",
		models.ColWashes:           "n/a",
		models.ColClassification:   "Fabric",
		models.ColParentBrand:      "",
		models.ColPreviousNetSales: "1000",
	}
	r := Record(raw, true)

	assert.Equal(t, "A1", r.SKU)
	assert.True(t, r.Price.Valid)
	assert.False(t, r.WashCount.Valid)
	assert.False(t, r.PresentNetSales.Valid)
	assert.Equal(t, "", r.ParentBrand)
	assert.True(t, r.IsCompetitor)
	assert.Equal(t, 1000.0, r.PreviousNetSales.Or0())
}

func TestValidate_TooManyClassifications(t *testing.T) {
	var rows []models.RawRecord
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		rows = append(rows, models.RawRecord{models.ColClassification: c})
	}
	err := Validate(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyClassifications))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 5, verr.Count)
	assert.Equal(t, MaxClassifications, verr.Limit)
}

func TestValidate_FourAndBlanksAccepted(t *testing.T) {
	rows := []models.RawRecord{
		{models.ColClassification: "A"},
		{models.ColClassification: "B"},
		{models.ColClassification: "C"},
		{models.ColClassification: "D"},
		{models.ColClassification: "A"},
		{models.ColClassification: " "},
	}
	assert.NoError(t, Validate(rows))
}

func TestValidateRecords_IgnoresCompetitors(t *testing.T) {
	recs := []models.SkuRecord{
		{Classification: "A"}, {Classification: "B"},
		{Classification: "C", IsCompetitor: true},
		{Classification: "D", IsCompetitor: true},
		{Classification: "E", IsCompetitor: true},
	}
	assert.NoError(t, ValidateRecords(recs))
}
