package climate

import (
	"github.com/lox/genevaclimate/internal/models"
)

// Direction selects the maximum or minimum of a field.
type Direction string

const (
	Max Direction = "max"
	Min Direction = "min"
)

// FindExtreme returns the record holding the maximum or minimum of field.
// Ties go to the earliest record in input order, which for loader output is
// the earliest year.
func FindExtreme(records []models.WeatherRecord, field models.Field, dir Direction) (models.WeatherRecord, error) {
	if len(records) == 0 {
		return models.WeatherRecord{}, ErrEmptyRange
	}
	best := records[0]
	bestVal := field.Value(best)
	for _, r := range records[1:] {
		v := field.Value(r)
		if (dir == Max && v > bestVal) || (dir == Min && v < bestVal) {
			best, bestVal = r, v
		}
	}
	return best, nil
}

// Highlight is one extreme shown on the highlights view.
type Highlight struct {
	Key       string               `json:"key"`
	Title     string               `json:"title"`
	Field     models.Field         `json:"field"`
	Direction Direction            `json:"direction"`
	Record    models.WeatherRecord `json:"record"`
}

// Value is the extreme value itself.
func (h Highlight) Value() float64 { return h.Field.Value(h.Record) }

// Formatted is the value rounded for display, with unit.
func (h Highlight) Formatted() string { return h.Field.Format(h.Value()) }

type highlightSpec struct {
	key   string
	title string
	field models.Field
	dir   Direction
}

// The first column of the highlights view holds the maxima, the second the minima.
var highlightSpecs = []highlightSpec{
	{"hottest", "Hottest Year (Avg)", models.FieldAvgTemp, Max},
	{"coldest", "Coldest Year (Avg)", models.FieldAvgTemp, Min},
	{"max_temp_ever", "Max Temp Ever", models.FieldMaxTemp, Max},
	{"min_temp_ever", "Min Temp Ever", models.FieldMinTemp, Min},
	{"wettest", "Wettest Year", models.FieldRain, Max},
	{"driest", "Driest Year", models.FieldRain, Min},
	{"snowiest", "Snowiest Year", models.FieldSnow, Max},
	{"least_snow", "Least Snow", models.FieldSnow, Min},
	{"sunniest", "Sunniest Year", models.FieldSunshine, Max},
	{"least_sunny", "Least Sunny Year", models.FieldSunshine, Min},
}

// Highlights computes the ten yearly extremes over the full record set.
func Highlights(records []models.WeatherRecord) ([]Highlight, error) {
	if len(records) == 0 {
		return nil, ErrEmptyRange
	}
	out := make([]Highlight, 0, len(highlightSpecs))
	for _, spec := range highlightSpecs {
		rec, err := FindExtreme(records, spec.field, spec.dir)
		if err != nil {
			return nil, err
		}
		out = append(out, Highlight{
			Key:       spec.key,
			Title:     spec.title,
			Field:     spec.field,
			Direction: spec.dir,
			Record:    rec,
		})
	}
	return out, nil
}

// HighlightByKey finds a highlight by its key.
func HighlightByKey(hs []Highlight, key string) (Highlight, bool) {
	for _, h := range hs {
		if h.Key == key {
			return h, true
		}
	}
	return Highlight{}, false
}
