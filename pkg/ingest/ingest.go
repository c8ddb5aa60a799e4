// Package ingest reads SKU datasets from CSV and XLSX files and writes the blank upload templates.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ppa/pkg/models"
)

// TemplateSheet is the sheet name of generated templates.
const TemplateSheet = "Template"

// Template file names written by WriteTemplates.
const (
	CompanyTemplate    = "company_data_template.xlsx"
	CompetitorTemplate = "competitor_data_template.xlsx"
)

// ErrMissingColumns is returned when a dataset lacks required headers.
var ErrMissingColumns = errors.New("missing required columns")

// ReadFile loads a .csv or .xlsx dataset, keyed by trimmed header.
func ReadFile(path string) ([]models.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSV parses CSV with a header row. Rows may have any field count; a row the
// CSV reader cannot parse fails the whole read with its line number.
func ReadCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return toRecords(headers, rows), nil
}

// ReadXLSX reads the first sheet of a workbook; the first row holds the headers.
func ReadXLSX(r io.Reader) ([]models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	return toRecords(rows[0], rows[1:]), nil
}

func toRecords(headers []string, rows [][]string) []models.RawRecord {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(models.RawRecord, len(keys))
		for i, val := range row {
			if i >= len(keys) {
				break
			}
			if keys[i] != "" {
				rec[keys[i]] = val
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RequireColumns checks that every required column appears in at least one row's keys.
// An empty dataset passes.
func RequireColumns(rows []models.RawRecord, required []string) error {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, col := range required {
		found := false
		for _, r := range rows {
			if _, ok := r[col]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// WriteTemplate writes an empty workbook with a single header row.
func WriteTemplate(w io.Writer, columns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteTemplates writes the company and competitor templates into dir and returns their paths.
func WriteTemplates(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range []string{CompanyTemplate, CompetitorTemplate} {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		err = WriteTemplate(f, models.CompanyColumns)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
