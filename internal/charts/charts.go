package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/models"
)

// ErrUnknownSeries is returned for a chart name that is not a trend series.
var ErrUnknownSeries = errors.New("unknown chart series")

const (
	Width  = 1200
	Height = 600
)

// tickStep is the spacing of year labels on the x axis.
const tickStep = 5

// Series describes one trend chart.
type Series struct {
	Name  string
	Title string
	YAxis string
	Field models.Field
	Color drawing.Color
	Area  bool // Fill under the line instead of marking points
}

var trendSeries = []Series{
	{Name: "temperature", Title: "Average Annual Temperature", YAxis: "Temperature (°C)", Field: models.FieldAvgTemp, Color: drawing.ColorFromHex("ff4500")},
	{Name: "rainfall", Title: "Total Rainfall per Year", YAxis: "Rainfall (mm)", Field: models.FieldRain, Color: drawing.ColorFromHex("4169e1"), Area: true},
	{Name: "sunshine", Title: "Sunshine Hours per Year", YAxis: "Hours", Field: models.FieldSunshine, Color: drawing.ColorFromHex("2e8b57")},
	{Name: "snowfall", Title: "Total Snowfall per Year", YAxis: "Snowfall (cm)", Field: models.FieldSnow, Color: drawing.ColorFromHex("708090"), Area: true},
}

var (
	meanColor = drawing.ColorFromHex("808080")
	gridColor = drawing.ColorFromHex("dddddd")
)

// All returns the trend series in display order.
func All() []Series {
	out := make([]Series, len(trendSeries))
	copy(out, trendSeries)
	return out
}

// Names returns the chart names accepted by Lookup.
func Names() []string {
	names := make([]string, len(trendSeries))
	for i, s := range trendSeries {
		names[i] = s.Name
	}
	return names
}

func Lookup(name string) (Series, error) {
	for _, s := range trendSeries {
		if s.Name == name {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
}

// Render draws s over records as a PNG, with a dashed line at the mean.
// An empty record set renders a placeholder image instead of failing.
func Render(s Series, records []models.WeatherRecord) ([]byte, error) {
	mean, err := climate.Mean(records, s.Field)
	if errors.Is(err, climate.ErrEmptyRange) {
		return Placeholder(s.Title, "No data for this range")
	}
	if err != nil {
		return nil, err
	}

	first, last := records[0].Year, records[len(records)-1].Year
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	lo, hi := mean, mean
	for i, r := range records {
		v := s.Field.Value(r)
		xs[i], ys[i] = float64(r.Year), v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	xMin, xMax := float64(first), float64(last)
	if xMin == xMax {
		// A single year still needs a drawable x range.
		xMin, xMax = xMin-0.5, xMax+0.5
		xs = []float64{xMin, xMax}
		ys = []float64{ys[0], ys[0]}
	}

	yMin, yMax := yBounds(s, lo, hi)

	style := chart.Style{
		StrokeColor: s.Color,
		StrokeWidth: 2,
	}
	if s.Area {
		style.FillColor = s.Color.WithAlpha(128)
	} else {
		style.DotColor = s.Color
		style.DotWidth = 4
	}

	ch := chart.Chart{
		Title:  s.Title,
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: yearTicks(first, last),
		},
		YAxis: chart.YAxis{
			Name:           s.YAxis,
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: wholeNumber,
			GridMajorStyle: chart.Style{
				StrokeColor:     gridColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 4},
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    s.Field.Label(),
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
			chart.ContinuousSeries{
				Name:    "Mean: " + s.Field.Format(mean),
				XValues: []float64{xMin, xMax},
				YValues: []float64{mean, mean},
				Style: chart.Style{
					StrokeColor:     meanColor,
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{6, 4},
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", s.Name, err)
	}
	return buf.Bytes(), nil
}

// yBounds pads the data range so lines do not touch the frame. Area series are
// anchored at zero.
func yBounds(s Series, lo, hi float64) (float64, float64) {
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	yMin, yMax := lo-pad, hi+pad
	if s.Area && lo >= 0 {
		yMin = 0
	}
	return yMin, yMax
}

func yearTicks(first, last int) []chart.Tick {
	var ticks []chart.Tick
	for y := first; y <= last; y += tickStep {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}

func wholeNumber(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return ""
}

// Placeholder renders a blank chart-sized PNG carrying a title and a message.
func Placeholder(title, message string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawCentered(img, title, Height/2-20, color.Black, face)
	drawCentered(img, message, Height/2+10, color.RGBA{128, 128, 128, 255}, face)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(img *image.RGBA, text string, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	w := d.MeasureString(text)
	d.Dot = fixed.Point26_6{X: (fixed.I(Width) - w) / 2, Y: fixed.I(y)}
	d.DrawString(text)
}
