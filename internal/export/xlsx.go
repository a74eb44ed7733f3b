// Package export writes weather records to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/models"
)

const (
	RecordsSheet = "Weather"
	SummarySheet = "Summary"
)

// WriteXLSX writes records, one row per year under the store's column
// headers, plus a summary sheet with the range and trend means.
func WriteXLSX(w io.Writer, records []models.WeatherRecord, summary climate.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := []interface{}{models.YearColumn}
	for _, field := range models.Fields {
		header = append(header, field.Column())
	}
	if err := f.SetSheetRow(RecordsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(RecordsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		row := []interface{}{r.Year}
		for _, field := range models.Fields {
			row = append(row, field.Value(r))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("write year %d: %w", r.Year, err)
		}
	}
	if err := f.SetColWidth(RecordsSheet, "B", "G", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := writeSummary(f, summary, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s climate.Summary, bold int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"From", s.MinYear},
		{"To", s.MaxYear},
		{"Years", s.Count},
	}
	for _, field := range climate.TrendFields {
		label := fmt.Sprintf("Mean %s (%s)", field.Label(), field.Unit())
		if m, ok := s.Means[field]; ok {
			rows = append(rows, []interface{}{label, m})
		} else {
			rows = append(rows, []interface{}{label, "n/a"})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	end, _ := excelize.CoordinatesToCellName(1, len(rows))
	if err := f.SetCellStyle(SummarySheet, "A1", end, bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 36)
}
