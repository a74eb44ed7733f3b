package ingest

import (
	"encoding/json"

	"github.com/lox/genevaclimate/internal/models"
)

// Quality flags are reported for imported rows but never reject them; the
// source file is trusted beyond the presence of every value.
const (
	FlagTempOutOfRange  = "temp_out_of_range"
	FlagTempOrder       = "temp_order"
	FlagRainNegative    = "rain_negative"
	FlagSnowNegative    = "snow_negative"
	FlagSunshineInvalid = "sunshine_invalid"
)

// hoursPerYear bounds yearly sunshine.
const hoursPerYear = 8784

func ValidateRecord(r models.WeatherRecord) []string {
	var flags []string

	for _, v := range []float64{r.AvgTempC, r.MaxTempC, r.MinTempC} {
		if v < -40 || v > 50 {
			flags = append(flags, FlagTempOutOfRange)
			break
		}
	}

	if r.MinTempC > r.AvgTempC || r.AvgTempC > r.MaxTempC {
		flags = append(flags, FlagTempOrder)
	}

	if r.TotalRainMM < 0 {
		flags = append(flags, FlagRainNegative)
	}

	if r.SnowCM < 0 {
		flags = append(flags, FlagSnowNegative)
	}

	if r.SunshineHours < 0 || r.SunshineHours > hoursPerYear {
		flags = append(flags, FlagSunshineInvalid)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
