package api

import (
	"fmt"

	"github.com/lox/genevaclimate/internal/charts"
	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/models"
)

// Page holds the fields every view needs for its header and navigation.
type Page struct {
	Title     string
	Active    string // "trends", "highlights" or "report"
	SourceURL string
}

func newPage(title, active string) Page {
	return Page{Title: title, Active: active, SourceURL: DataSourceURL}
}

// ChartView is one trend chart on the trends view.
type ChartView struct {
	Name      string
	Title     string
	URL       string
	MeanLabel string
}

type TrendsPage struct {
	Page
	MinYear   int
	MaxYear   int
	BoundMin  int
	BoundMax  int
	Count     int
	Empty     bool
	Charts    []ChartView
	ExportURL string
}

// HighlightView is one extreme, formatted for display.
type HighlightView struct {
	Key   string
	Title string
	Year  int
	Value string
}

type HighlightsPage struct {
	Page
	Left      []HighlightView // maxima
	Right     []HighlightView // minima
	Narrative string
	Empty     bool
}

type ReportPage struct {
	Page
	PDFAvailable bool
	DownloadURL  string
	EmbedURL     string
	EmbedWidth   int
	EmbedHeight  int
}

func rangeQuery(minYear, maxYear int) string {
	return fmt.Sprintf("min=%d&max=%d", minYear, maxYear)
}

func buildTrendsPage(summary climate.Summary, boundMin, boundMax int) TrendsPage {
	page := TrendsPage{
		Page:      newPage("Geneva Climate Change Explorer", "trends"),
		MinYear:   summary.MinYear,
		MaxYear:   summary.MaxYear,
		BoundMin:  boundMin,
		BoundMax:  boundMax,
		Count:     summary.Count,
		Empty:     summary.Count == 0,
		ExportURL: "/export.xlsx?" + rangeQuery(summary.MinYear, summary.MaxYear),
	}
	for _, s := range charts.All() {
		cv := ChartView{
			Name:  s.Name,
			Title: s.Title,
			URL:   fmt.Sprintf("/charts/%s.png?%s", s.Name, rangeQuery(summary.MinYear, summary.MaxYear)),
		}
		if m, ok := summary.Means[s.Field]; ok {
			cv.MeanLabel = "Mean: " + s.Field.Format(m)
		}
		page.Charts = append(page.Charts, cv)
	}
	return page
}

func buildHighlightsPage(hs []climate.Highlight, narrative string) HighlightsPage {
	page := HighlightsPage{
		Page:      newPage("Yearly Extremes", "highlights"),
		Narrative: narrative,
		Empty:     len(hs) == 0,
	}
	for _, h := range hs {
		v := HighlightView{Key: h.Key, Title: h.Title, Year: h.Record.Year, Value: h.Formatted()}
		if h.Direction == climate.Max {
			page.Left = append(page.Left, v)
		} else {
			page.Right = append(page.Right, v)
		}
	}
	return page
}

// SummaryResponse is the JSON form of a range summary. Means are null when the
// range holds no records.
type SummaryResponse struct {
	MinYear   int                 `json:"min_year"`
	MaxYear   int                 `json:"max_year"`
	Count     int                 `json:"count"`
	Means     map[string]*float64 `json:"means"`
	Formatted map[string]string   `json:"formatted,omitempty"`
}

func newSummaryResponse(s climate.Summary) SummaryResponse {
	resp := SummaryResponse{
		MinYear: s.MinYear,
		MaxYear: s.MaxYear,
		Count:   s.Count,
		Means:   make(map[string]*float64, len(climate.TrendFields)),
	}
	for _, f := range climate.TrendFields {
		m, ok := s.Means[f]
		if !ok {
			resp.Means[string(f)] = nil
			continue
		}
		resp.Means[string(f)] = &m
		if resp.Formatted == nil {
			resp.Formatted = make(map[string]string)
		}
		resp.Formatted[string(f)] = f.Format(m)
	}
	return resp
}

// HighlightResponse is one extreme in the JSON API.
type HighlightResponse struct {
	Key       string               `json:"key"`
	Title     string               `json:"title"`
	Field     string               `json:"field"`
	Direction string               `json:"direction"`
	Year      int                  `json:"year"`
	Value     float64              `json:"value"`
	Formatted string               `json:"formatted"`
	Record    models.WeatherRecord `json:"record"`
}

func newHighlightResponses(hs []climate.Highlight) []HighlightResponse {
	out := make([]HighlightResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, HighlightResponse{
			Key:       h.Key,
			Title:     h.Title,
			Field:     string(h.Field),
			Direction: string(h.Direction),
			Year:      h.Record.Year,
			Value:     h.Value(),
			Formatted: h.Formatted(),
			Record:    h.Record,
		})
	}
	return out
}
