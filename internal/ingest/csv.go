package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lox/genevaclimate/internal/models"
)

// ErrBadHeader means the CSV header lacks one of the expected columns.
var ErrBadHeader = errors.New("csv header does not match weather schema")

// csvRow is one parsed CSV line before it becomes a WeatherRecord.
// Pointers distinguish an empty cell from a zero.
type csvRow struct {
	Year          *int     `validate:"required,gte=1700,lte=2200"`
	AvgTempC      *float64 `validate:"required"`
	MaxTempC      *float64 `validate:"required"`
	MinTempC      *float64 `validate:"required"`
	TotalRainMM   *float64 `validate:"required"`
	SnowCM        *float64 `validate:"required"`
	SunshineHours *float64 `validate:"required"`
}

var validate = validator.New()

// RowError reports a rejected CSV line.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// ParseCSV reads yearly records from a CSV with the weather table's literal
// column headers. Columns are matched by name; unknown columns are ignored.
// Any row with an empty or unparsable measurement rejects the whole file.
func ParseCSV(r io.Reader) ([]models.WeatherRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	yearCol, ok := index[models.YearColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadHeader, models.YearColumn)
	}
	fieldCols := make([]int, len(models.Fields))
	for i, f := range models.Fields {
		col, ok := index[f.Column()]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrBadHeader, f.Column())
		}
		fieldCols[i] = col
	}

	var records []models.WeatherRecord
	seen := make(map[int]int)
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(cells) {
			continue
		}

		row, err := parseRow(cells, yearCol, fieldCols)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if err := validate.Struct(row); err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		rec := row.record()
		if prev, dup := seen[rec.Year]; dup {
			return nil, &RowError{Line: line, Err: fmt.Errorf("year %d already defined on line %d", rec.Year, prev)}
		}
		seen[rec.Year] = line
		records = append(records, rec)
	}
	return records, nil
}

// ParseCSVBytes is ParseCSV over an in-memory payload.
func ParseCSVBytes(payload []byte) ([]models.WeatherRecord, error) {
	return ParseCSV(bytes.NewReader(payload))
}

func parseRow(cells []string, yearCol int, fieldCols []int) (csvRow, error) {
	var row csvRow
	if s := cell(cells, yearCol); s != "" {
		// pandas writes integer columns holding NaN as floats ("1990.0").
		y, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("%s: %w", models.YearColumn, err)
		}
		year := int(y)
		if float64(year) != y {
			return row, fmt.Errorf("%s: %q is not a whole year", models.YearColumn, s)
		}
		row.Year = &year
	}

	targets := []**float64{&row.AvgTempC, &row.MaxTempC, &row.MinTempC, &row.TotalRainMM, &row.SnowCM, &row.SunshineHours}
	for i, f := range models.Fields {
		s := cell(cells, fieldCols[i])
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("%s: %w", f.Column(), err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return row, fmt.Errorf("%s: %q is not a measurement", f.Column(), s)
		}
		*targets[i] = &v
	}
	return row, nil
}

func (r csvRow) record() models.WeatherRecord {
	return models.WeatherRecord{
		Year:          *r.Year,
		AvgTempC:      *r.AvgTempC,
		MaxTempC:      *r.MaxTempC,
		MinTempC:      *r.MinTempC,
		TotalRainMM:   *r.TotalRainMM,
		SnowCM:        *r.SnowCM,
		SunshineHours: *r.SunshineHours,
	}
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
