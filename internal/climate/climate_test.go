package climate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/genevaclimate/internal/models"
)

func sampleRecords() []models.WeatherRecord {
	return []models.WeatherRecord{
		{Year: 1990, AvgTempC: 10.0, MaxTempC: 33.1, MinTempC: -8.2, TotalRainMM: 850, SnowCM: 20, SunshineHours: 1900},
		{Year: 2000, AvgTempC: 12.5, MaxTempC: 35.4, MinTempC: -5.0, TotalRainMM: 1100, SnowCM: 5, SunshineHours: 2100},
		{Year: 2010, AvgTempC: 9.0, MaxTempC: 31.0, MinTempC: -12.3, TotalRainMM: 700, SnowCM: 45, SunshineHours: 1750},
	}
}

func TestEndToEndExample(t *testing.T) {
	ds, err := NewDataset(sampleRecords())
	require.NoError(t, err)

	filtered := ds.Filter(1995, 2010)
	require.Len(t, filtered, 2)
	assert.Equal(t, 2000, filtered[0].Year)
	assert.Equal(t, 2010, filtered[1].Year)

	mean, err := Mean(filtered, models.FieldAvgTemp)
	require.NoError(t, err)
	assert.InDelta(t, 10.75, mean, 1e-12)

	hottest, err := FindExtreme(ds.Records(), models.FieldAvgTemp, Max)
	require.NoError(t, err)
	assert.Equal(t, 2000, hottest.Year)
	assert.Equal(t, 12.5, hottest.AvgTempC)
}

func TestNewDataset_SortsAndRejectsDuplicates(t *testing.T) {
	recs := sampleRecords()
	shuffled := []models.WeatherRecord{recs[2], recs[0], recs[1]}

	ds, err := NewDataset(shuffled)
	require.NoError(t, err)
	got := ds.Records()
	assert.Equal(t, []int{1990, 2000, 2010}, years(got))

	_, err = NewDataset(append(shuffled, models.WeatherRecord{Year: 2000}))
	assert.Error(t, err)
}

func TestFilterByYear(t *testing.T) {
	recs := contiguous(1962, 2024)

	tests := []struct {
		name     string
		min, max int
		want     int
	}{
		{"inner range", 1990, 2024, 35},
		{"single year", 2003, 2003, 1},
		{"full bounds", 1962, 2024, 63},
		{"below data", 1900, 1950, 0},
		{"overlapping low edge", 1950, 1965, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByYear(recs, tt.min, tt.max)
			assert.Len(t, got, tt.want)
			for _, r := range got {
				assert.GreaterOrEqual(t, r.Year, tt.min)
				assert.LessOrEqual(t, r.Year, tt.max)
			}
		})
	}
}

func TestFilterByYear_FullBoundsUnchanged(t *testing.T) {
	ds, err := NewDataset(contiguous(1962, 2024))
	require.NoError(t, err)
	lo, hi, ok := ds.Bounds()
	require.True(t, ok)
	assert.Equal(t, ds.Records(), ds.Filter(lo, hi))
}

func TestFilterByYear_NarrowingIsIdempotent(t *testing.T) {
	recs := contiguous(1962, 2024)
	wide := FilterByYear(recs, 1970, 2020)
	assert.Equal(t, FilterByYear(recs, 1985, 1999), FilterByYear(wide, 1985, 1999))
}

func TestFilterByYear_NonContiguousCount(t *testing.T) {
	recs := []models.WeatherRecord{{Year: 1962}, {Year: 1970}, {Year: 1971}, {Year: 1990}}
	assert.Equal(t, []int{1970, 1971}, years(FilterByYear(recs, 1963, 1989)))
}

func TestMean_SingleRecord(t *testing.T) {
	r := models.WeatherRecord{Year: 2003, AvgTempC: 12.37, TotalRainMM: 612.4}
	for _, f := range models.Fields {
		m, err := Mean([]models.WeatherRecord{r}, f)
		require.NoError(t, err)
		assert.Equal(t, f.Value(r), m, f)
	}
}

func TestMean_OrderInvariant(t *testing.T) {
	recs := contiguous(1962, 2024)
	want, err := Mean(recs, models.FieldSunshine)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	shuffled := append([]models.WeatherRecord(nil), recs...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got, err := Mean(shuffled, models.FieldSunshine)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestMean_Empty(t *testing.T) {
	_, err := Mean(nil, models.FieldAvgTemp)
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestTrendMeans(t *testing.T) {
	recs := sampleRecords()
	s := TrendMeans(recs, 1990, 2010)
	assert.Equal(t, 3, s.Count)
	assert.Len(t, s.Means, 4)
	assert.InDelta(t, 883.333, s.Means[models.FieldRain], 0.001)
	_, hasMaxTemp := s.Means[models.FieldMaxTemp]
	assert.False(t, hasMaxTemp)

	empty := TrendMeans(nil, 1900, 1901)
	assert.Zero(t, empty.Count)
	assert.Empty(t, empty.Means)
}

func TestFindExtreme_Dominates(t *testing.T) {
	recs := contiguous(1962, 2024)
	maxRec, err := FindExtreme(recs, models.FieldAvgTemp, Max)
	require.NoError(t, err)
	minRec, err := FindExtreme(recs, models.FieldAvgTemp, Min)
	require.NoError(t, err)

	for _, r := range recs {
		assert.GreaterOrEqual(t, maxRec.AvgTempC, r.AvgTempC)
		assert.LessOrEqual(t, minRec.AvgTempC, r.AvgTempC)
	}
}

func TestFindExtreme_TieGoesToEarliestYear(t *testing.T) {
	recs := []models.WeatherRecord{
		{Year: 1970, SnowCM: 0},
		{Year: 1980, SnowCM: 60},
		{Year: 1990, SnowCM: 0},
		{Year: 2000, SnowCM: 60},
	}
	hi, err := FindExtreme(recs, models.FieldSnow, Max)
	require.NoError(t, err)
	assert.Equal(t, 1980, hi.Year)

	lo, err := FindExtreme(recs, models.FieldSnow, Min)
	require.NoError(t, err)
	assert.Equal(t, 1970, lo.Year)
}

func TestFindExtreme_Empty(t *testing.T) {
	_, err := FindExtreme(nil, models.FieldRain, Max)
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestHighlights(t *testing.T) {
	hs, err := Highlights(sampleRecords())
	require.NoError(t, err)
	require.Len(t, hs, 10)

	want := map[string]int{
		"hottest":       2000,
		"coldest":       2010,
		"max_temp_ever": 2000,
		"min_temp_ever": 2010,
		"wettest":       2000,
		"driest":        2010,
		"snowiest":      2010,
		"least_snow":    2000,
		"sunniest":      2000,
		"least_sunny":   2010,
	}
	for key, year := range want {
		h, ok := HighlightByKey(hs, key)
		require.True(t, ok, key)
		assert.Equal(t, year, h.Record.Year, key)
	}

	hottest, _ := HighlightByKey(hs, "hottest")
	assert.Equal(t, "12.50°C", hottest.Formatted())
	wettest, _ := HighlightByKey(hs, "wettest")
	assert.Equal(t, "1100 mm", wettest.Formatted())
	maxEver, _ := HighlightByKey(hs, "max_temp_ever")
	assert.Equal(t, "35.4°C", maxEver.Formatted())

	_, err = Highlights(nil)
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestClampRange(t *testing.T) {
	ds, err := NewDataset(contiguous(1962, 2024))
	require.NoError(t, err)

	tests := []struct {
		name             string
		inMin, inMax     int
		wantMin, wantMax int
	}{
		{"inside", 1990, 2000, 1990, 2000},
		{"below", 1900, 1970, 1962, 1970},
		{"above", 2000, 2100, 2000, 2024},
		{"swapped", 2000, 1990, 1990, 2000},
		{"entirely outside", 2050, 2060, 2024, 2024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := ds.ClampRange(tt.inMin, tt.inMax)
			assert.Equal(t, tt.wantMin, lo)
			assert.Equal(t, tt.wantMax, hi)
		})
	}
}

func TestDefaultRange(t *testing.T) {
	full, _ := NewDataset(contiguous(1962, 2024))
	lo, hi := full.DefaultRange()
	assert.Equal(t, 1990, lo)
	assert.Equal(t, 2024, hi)

	short, _ := NewDataset(contiguous(1995, 2010))
	lo, hi = short.DefaultRange()
	assert.Equal(t, 1995, lo)
	assert.Equal(t, 2010, hi)

	old, _ := NewDataset(contiguous(1900, 1950))
	lo, hi = old.DefaultRange()
	assert.Equal(t, 1900, lo)
	assert.Equal(t, 1950, hi)
}

func contiguous(from, to int) []models.WeatherRecord {
	var recs []models.WeatherRecord
	for y := from; y <= to; y++ {
		i := float64(y - from)
		recs = append(recs, models.WeatherRecord{
			Year:          y,
			AvgTempC:      9.5 + 0.03*i + float64((y*7)%5)/10,
			MaxTempC:      32 + float64((y*3)%6),
			MinTempC:      -10 + float64((y*5)%7),
			TotalRainMM:   800 + float64((y*13)%300),
			SnowCM:        float64((y * 11) % 50),
			SunshineHours: 1800 + float64((y*17)%400),
		})
	}
	return recs
}

func years(recs []models.WeatherRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Year
	}
	return out
}
