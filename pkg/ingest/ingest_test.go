package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ppa/pkg/models"
)

const companyCSV = "\ufeffSKU,Pack Size,Price,Number of Washes,Classification,Price Tier,Parent Brand,Previous Volume,Present Volume,Previous Net Sales,Present Net Sales,Shelf Row\n" +
	"A1,1kg,10,50,Fabric,Premium,Brand,100,120,1000,1200,1\n" +
	",,,,,,,,,,,\n" +
	"A2,2kg,12,oops,Fabric,Value,,,,,,2\n"

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(companyCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank rows are dropped")

	assert.Equal(t, "A1", rows[0][models.ColSKU])
	assert.Equal(t, "1200", rows[0][models.ColPresentNetSales])
	assert.Equal(t, "oops", rows[1][models.ColWashes])
	assert.NoError(t, RequireColumns(rows, models.CompanyColumns))
}

func TestReadCSV_ParseError(t *testing.T) {
	in := "SKU,Price\nA1,10\nA2,1\"2\nA3,5\n"
	_, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)

	var perr *csv.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.StartLine)
	assert.ErrorIs(t, err, csv.ErrBareQuote)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("SKU,Price,Classification\nA1,10\nA2,12,Fabric,extra\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "10", rows[0][models.ColPrice])
	assert.Equal(t, "Fabric", rows[1][models.ColClassification])
}

func TestRequireColumns(t *testing.T) {
	rows := []models.RawRecord{{models.ColSKU: "A"}}
	err := RequireColumns(rows, models.BaseColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), models.ColPrice)

	assert.NoError(t, RequireColumns(nil, models.BaseColumns))
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, models.CompanyColumns))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{TemplateSheet}, f.GetSheetList())

	rows, err := f.GetRows(TemplateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.CompanyColumns, rows[0])
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"SKU", "Price", "Number of Washes", "Classification"}
	row := []interface{}{"C1", 15, 100, "Fabric"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))

	path := filepath.Join(t.TempDir(), "rival.xlsx")
	require.NoError(t, f.SaveAs(path))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C1", rows[0][models.ColSKU])
	assert.Equal(t, "15", rows[0][models.ColPrice])
}

func TestWriteTemplates(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteTemplates(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	assert.Equal(t, filepath.Join(dir, CompanyTemplate), paths[0])
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile("data.json")
	assert.Error(t, err)
}
