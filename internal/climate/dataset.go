// Package climate holds the query and aggregation logic over the yearly
// weather table: year-range filtering, series means and global extremes.
//
// Every function here is pure. A Dataset is immutable once built and can be
// shared by concurrent readers.
package climate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/genevaclimate/internal/models"
)

// ErrEmptyRange is returned when an aggregate or extreme has no input records.
var ErrEmptyRange = errors.New("no records in range")

// Default trend window, intersected with the years actually present.
const (
	DefaultMinYear = 1990
	DefaultMaxYear = 2024
)

// Dataset is the full record set, sorted by year ascending.
type Dataset struct {
	records []models.WeatherRecord
}

// NewDataset copies and sorts records by year. Duplicate years are rejected.
func NewDataset(records []models.WeatherRecord) (*Dataset, error) {
	sorted := make([]models.WeatherRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Year == sorted[i-1].Year {
			return nil, fmt.Errorf("duplicate record for year %d", sorted[i].Year)
		}
	}
	return &Dataset{records: sorted}, nil
}

// Records returns a copy of every record in year order.
func (d *Dataset) Records() []models.WeatherRecord {
	out := make([]models.WeatherRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Dataset) Len() int { return len(d.records) }

// Bounds returns the first and last year present. ok is false for an empty dataset.
func (d *Dataset) Bounds() (minYear, maxYear int, ok bool) {
	if len(d.records) == 0 {
		return 0, 0, false
	}
	return d.records[0].Year, d.records[len(d.records)-1].Year, true
}

// ClampRange clamps a requested range into the dataset bounds. Inverted bounds are swapped.
func (d *Dataset) ClampRange(minYear, maxYear int) (int, int) {
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}
	lo, hi, ok := d.Bounds()
	if !ok {
		return minYear, maxYear
	}
	return clamp(minYear, lo, hi), clamp(maxYear, lo, hi)
}

// DefaultRange is the default trend window intersected with the dataset bounds,
// or the full bounds when they do not overlap.
func (d *Dataset) DefaultRange() (int, int) {
	lo, hi, ok := d.Bounds()
	if !ok {
		return DefaultMinYear, DefaultMaxYear
	}
	if DefaultMaxYear < lo || DefaultMinYear > hi {
		return lo, hi
	}
	return max(DefaultMinYear, lo), min(DefaultMaxYear, hi)
}

// Filter returns the records in [minYear, maxYear].
func (d *Dataset) Filter(minYear, maxYear int) []models.WeatherRecord {
	return FilterByYear(d.records, minYear, maxYear)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
