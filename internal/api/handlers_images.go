package api

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lox/genevaclimate/internal/charts"
	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/export"
	"github.com/lox/genevaclimate/internal/imagegen"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleChart serves a trend chart PNG for the requested range.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := s.yearRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.charts.Chart(chi.URLParam(r, "series"), s.data.Filter(lo, hi), lo, hi)
	if errors.Is(err, charts.ErrUnknownSeries) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("api: chart: %v", err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	servePNG(w, data, "public, max-age=3600")
}

// handleHighlightsCard serves the extremes card. Highlights never change while
// serving, so the card is rendered once per cache period.
func (s *Server) handleHighlightsCard(w http.ResponseWriter, r *http.Request) {
	lo, hi, _ := s.data.Bounds()
	data, err := s.images.GetOrRender("highlights", func() ([]byte, error) {
		return imagegen.GenerateHighlightsCard(imagegen.CardData{Highlights: s.highlights, MinYear: lo, MaxYear: hi})
	})
	if err != nil {
		log.Printf("api: highlights card: %v", err)
		http.Error(w, "image generation failed", http.StatusInternalServerError)
		return
	}
	servePNG(w, data, "public, max-age=3600")
}

func servePNG(w http.ResponseWriter, data []byte, cacheControl string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// handleExport serves the filtered records as an XLSX workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := s.yearRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	records := s.data.Filter(lo, hi)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, records, climate.TrendMeans(records, lo, hi)); err != nil {
		log.Printf("api: export: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("geneva-weather-%d-%d.xlsx", lo, hi)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
