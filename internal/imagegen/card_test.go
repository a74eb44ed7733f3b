package imagegen

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/models"
)

func TestGenerateHighlightsCard(t *testing.T) {
	records := []models.WeatherRecord{
		{Year: 1990, AvgTempC: 10.0, MaxTempC: 33.1, MinTempC: -8.2, TotalRainMM: 850, SnowCM: 20, SunshineHours: 1900},
		{Year: 2000, AvgTempC: 12.5, MaxTempC: 35.4, MinTempC: -5.0, TotalRainMM: 1100, SnowCM: 5, SunshineHours: 2100},
		{Year: 2010, AvgTempC: 9.0, MaxTempC: 31.0, MinTempC: -12.3, TotalRainMM: 700, SnowCM: 45, SunshineHours: 1750},
	}
	hs, err := climate.Highlights(records)
	if err != nil {
		t.Fatalf("Highlights: %v", err)
	}

	tests := []struct {
		name string
		data CardData
	}{
		{name: "full", data: CardData{Highlights: hs, MinYear: 1990, MaxYear: 2010}},
		{name: "empty", data: CardData{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GenerateHighlightsCard(tt.data)
			if err != nil {
				t.Fatalf("GenerateHighlightsCard: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != CardWidth || b.Dy() != CardHeight {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), CardWidth, CardHeight)
			}
		})
	}
}
