package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

type recordsResponse struct {
	MinYear int                    `json:"min_year"`
	MaxYear int                    `json:"max_year"`
	Records []models.WeatherRecord `json:"records"`
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := s.yearRange(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	render.JSON(w, r, recordsResponse{MinYear: lo, MaxYear: hi, Records: s.data.Filter(lo, hi)})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := s.yearRange(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	render.JSON(w, r, newSummaryResponse(climate.TrendMeans(s.data.Filter(lo, hi), lo, hi)))
}

func (s *Server) handleAPIHighlights(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"highlights": newHighlightResponses(s.highlights)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"records": s.data.Len(),
	}
	if lo, hi, ok := s.data.Bounds(); ok {
		resp["min_year"] = lo
		resp["max_year"] = hi
	}
	render.JSON(w, r, resp)
}
