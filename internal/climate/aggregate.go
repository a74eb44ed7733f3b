package climate

import (
	"github.com/lox/genevaclimate/internal/models"
)

// FilterByYear returns the records whose year lies in [minYear, maxYear],
// preserving input order. The result never aliases the input slice.
func FilterByYear(records []models.WeatherRecord, minYear, maxYear int) []models.WeatherRecord {
	out := make([]models.WeatherRecord, 0, len(records))
	for _, r := range records {
		if r.Year >= minYear && r.Year <= maxYear {
			out = append(out, r)
		}
	}
	return out
}

// Mean is the arithmetic mean of field over records.
func Mean(records []models.WeatherRecord, field models.Field) (float64, error) {
	if len(records) == 0 {
		return 0, ErrEmptyRange
	}
	sum := 0.0
	for _, r := range records {
		sum += field.Value(r)
	}
	return sum / float64(len(records)), nil
}

// TrendFields are the series plotted on the trends view, in display order.
var TrendFields = []models.Field{models.FieldAvgTemp, models.FieldRain, models.FieldSunshine, models.FieldSnow}

// Summary describes a filtered range and the means of the trend series.
// Means is empty when the range holds no records.
type Summary struct {
	MinYear int                      `json:"min_year"`
	MaxYear int                      `json:"max_year"`
	Count   int                      `json:"count"`
	Means   map[models.Field]float64 `json:"means"`
}

// TrendMeans computes the overlay means of every trend series over records.
func TrendMeans(records []models.WeatherRecord, minYear, maxYear int) Summary {
	s := Summary{
		MinYear: minYear,
		MaxYear: maxYear,
		Count:   len(records),
		Means:   make(map[models.Field]float64, len(TrendFields)),
	}
	for _, f := range TrendFields {
		m, err := Mean(records, f)
		if err != nil {
			continue
		}
		s.Means[f] = m
	}
	return s
}
