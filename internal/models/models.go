package models

import (
	"fmt"
	"strconv"
)

// WeatherRecord is one calendar year of aggregated climate measurements.
type WeatherRecord struct {
	Year          int     `json:"year"`
	AvgTempC      float64 `json:"avg_temp_c"`
	MaxTempC      float64 `json:"max_temp_c"`
	MinTempC      float64 `json:"min_temp_c"`
	TotalRainMM   float64 `json:"total_rain_mm"`
	SnowCM        float64 `json:"snow_cm"`
	SunshineHours float64 `json:"sunshine_hours"`
}

// YearColumn is the literal name of the year column in the weather table.
const YearColumn = "Year"

// Field identifies one measurement column of a WeatherRecord.
type Field string

const (
	FieldAvgTemp  Field = "avg_temp_c"
	FieldMaxTemp  Field = "max_temp_c"
	FieldMinTemp  Field = "min_temp_c"
	FieldRain     Field = "total_rain_mm"
	FieldSnow     Field = "snow_cm"
	FieldSunshine Field = "sunshine_hours"
)

// Fields lists every measurement field in table column order.
var Fields = []Field{FieldAvgTemp, FieldMaxTemp, FieldMinTemp, FieldRain, FieldSnow, FieldSunshine}

type fieldMeta struct {
	column    string
	label     string
	unit      string
	precision int
}

var fieldInfo = map[Field]fieldMeta{
	FieldAvgTemp:  {column: "Avg Temp (°C)", label: "Average Temperature", unit: "°C", precision: 2},
	FieldMaxTemp:  {column: "Max Temp", label: "Maximum Temperature", unit: "°C", precision: 1},
	FieldMinTemp:  {column: "Min Temp", label: "Minimum Temperature", unit: "°C", precision: 1},
	FieldRain:     {column: "Total Rain (mm)", label: "Total Rainfall", unit: "mm", precision: 0},
	FieldSnow:     {column: "Snow (cm)", label: "Snowfall", unit: "cm", precision: 0},
	FieldSunshine: {column: "Sunshine Hours", label: "Sunshine", unit: "hrs", precision: 0},
}

// Column returns the literal column name used by the weather table and the source CSV.
func (f Field) Column() string { return fieldInfo[f].column }

func (f Field) Label() string { return fieldInfo[f].label }

func (f Field) Unit() string { return fieldInfo[f].unit }

// Precision is the number of decimals shown when the field is presented.
func (f Field) Precision() int { return fieldInfo[f].precision }

func (f Field) Valid() bool {
	_, ok := fieldInfo[f]
	return ok
}

// Value reads the field from a record.
func (f Field) Value(r WeatherRecord) float64 {
	switch f {
	case FieldAvgTemp:
		return r.AvgTempC
	case FieldMaxTemp:
		return r.MaxTempC
	case FieldMinTemp:
		return r.MinTempC
	case FieldRain:
		return r.TotalRainMM
	case FieldSnow:
		return r.SnowCM
	case FieldSunshine:
		return r.SunshineHours
	}
	panic(fmt.Sprintf("models: unknown field %q", string(f)))
}

// Set writes v into the field of r.
func (f Field) Set(r *WeatherRecord, v float64) {
	switch f {
	case FieldAvgTemp:
		r.AvgTempC = v
	case FieldMaxTemp:
		r.MaxTempC = v
	case FieldMinTemp:
		r.MinTempC = v
	case FieldRain:
		r.TotalRainMM = v
	case FieldSnow:
		r.SnowCM = v
	case FieldSunshine:
		r.SunshineHours = v
	default:
		panic(fmt.Sprintf("models: unknown field %q", string(f)))
	}
}

// Format renders v rounded to the field's presentation precision, with its unit.
// Temperatures are written without a separating space ("10.75°C").
func (f Field) Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', f.Precision(), 64)
	if f.Unit() == "°C" {
		return s + f.Unit()
	}
	return s + " " + f.Unit()
}
