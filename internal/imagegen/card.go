package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/genevaclimate/internal/climate"
)

var (
	fontTitle   font.Face
	fontValue   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func newFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func loadFonts() {
	fontOnce.Do(func() {
		if fontTitle, fontErr = newFace(gobold.TTF, 44); fontErr != nil {
			return
		}
		if fontValue, fontErr = newFace(gobold.TTF, 30); fontErr != nil {
			return
		}
		fontRegular, fontErr = newFace(goregular.TTF, 22)
	})
}

// Card dimensions match the standard Open Graph image size.
const (
	CardWidth  = 1200
	CardHeight = 630
)

// CardData is the content of the highlights card.
type CardData struct {
	Highlights []climate.Highlight
	MinYear    int
	MaxYear    int
}

var (
	white     = color.RGBA{255, 255, 255, 255}
	lightGray = color.RGBA{200, 200, 200, 255}
	accent    = color.RGBA{255, 140, 90, 255}
)

// GenerateHighlightsCard draws the yearly extremes as a two-column PNG card.
// Maxima go in the left column and minima in the right, in highlight order.
func GenerateHighlightsCard(data CardData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	drawBackground(img)

	drawText(img, "Geneva Climate Extremes", 60, 80, white, fontTitle)
	if len(data.Highlights) == 0 {
		drawText(img, "No data available", 60, 140, lightGray, fontRegular)
	} else {
		span := fmt.Sprintf("%d-%d", data.MinYear, data.MaxYear)
		drawText(img, span, 60, 120, lightGray, fontRegular)
	}

	const (
		top     = 190
		rowStep = 86
	)
	for i, h := range data.Highlights {
		x := 60
		if i%2 == 1 {
			x = CardWidth/2 + 40
		}
		y := top + (i/2)*rowStep
		drawText(img, h.Title, x, y, lightGray, fontRegular)
		drawText(img, fmt.Sprintf("%d", h.Record.Year), x, y+36, accent, fontValue)
		drawText(img, h.Formatted(), x+110, y+36, white, fontValue)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode highlights card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBackground fills img with a dark blue vertical gradient.
func drawBackground(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		progress := float64(y) / float64(b.Dy())
		c := color.RGBA{uint8(20 + progress*10), uint8(24 + progress*16), uint8(48 + progress*24), 255}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
