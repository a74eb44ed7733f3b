package api

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lox/genevaclimate/internal/climate"
)

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("api: template %s: %v", name, err)
	}
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := s.yearRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	records := s.data.Filter(lo, hi)
	boundMin, boundMax, _ := s.data.Bounds()

	s.renderPage(w, "trends.html", buildTrendsPage(climate.TrendMeans(records, lo, hi), boundMin, boundMax))
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	var text string
	if len(s.highlights) > 0 {
		text = s.highlightsNarrative(r.Context())
	}
	s.renderPage(w, "highlights.html", buildHighlightsPage(s.highlights, text))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, err := os.Stat(s.opts.ReportPDF)
	s.renderPage(w, "report.html", ReportPage{
		Page:         newPage("Power BI Report", "report"),
		PDFAvailable: err == nil,
		DownloadURL:  "/report/download",
		EmbedURL:     s.opts.EmbedURL,
		EmbedWidth:   1100,
		EmbedHeight:  800,
	})
}

// handleReportDownload serves the bundled PDF as an attachment under its own file name.
func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.opts.ReportPDF)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "report not available", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("api: open report: %v", err)
		http.Error(w, "report not available", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "report not available", http.StatusNotFound)
		return
	}

	name := filepath.Base(s.opts.ReportPDF)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
