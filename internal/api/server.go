package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/genevaclimate/internal/charts"
	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/narrative"
)

const (
	DefaultAddr      = ":8080"
	DefaultReportPDF = "Geneva Weather since 1962.pdf"
	DefaultEmbedURL  = "https://app.powerbi.com/reportEmbed?reportId=2217ab57-c747-4d04-9103-9cdc68d2a388&autoAuth=true&ctid=a657607d-9ab9-47c7-8df4-3fd4e6c3294b&actionBarEnabled=true"
	DataSourceURL    = "https://statistique.ge.ch/domaines/02/02_02/tableaux.asp#3"
)

// Options configures a Server. Zero values fall back to the defaults above.
type Options struct {
	Addr      string
	ReportPDF string
	EmbedURL  string
	Narrative narrative.Writer
	Clock     clockwork.Clock
	ImageTTL  time.Duration
}

type Server struct {
	data       *climate.Dataset
	opts       Options
	tmpl       *template.Template
	images     *charts.Cache
	charts     *charts.Renderer
	highlights []climate.Highlight

	narrMu   sync.Mutex
	narrText string
	narrDone bool
}

// NewServer serves data, which must not change afterwards. Highlights are
// computed once here over the full dataset.
func NewServer(data *climate.Dataset, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ReportPDF == "" {
		opts.ReportPDF = DefaultReportPDF
	}
	if opts.EmbedURL == "" {
		opts.EmbedURL = DefaultEmbedURL
	}
	if opts.Narrative == nil {
		opts.Narrative = narrative.TemplateWriter{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ImageTTL == 0 {
		opts.ImageTTL = time.Hour
	}

	hs, err := climate.Highlights(data.Records())
	if err != nil && !errors.Is(err, climate.ErrEmptyRange) {
		log.Printf("api: highlights: %v", err)
	}

	images := charts.NewCache(opts.Clock, opts.ImageTTL)
	return &Server{
		data:       data,
		opts:       opts,
		tmpl:       newTemplates(),
		images:     images,
		charts:     charts.NewRenderer(images, opts.Clock),
		highlights: hs,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/", s.handleTrends)
	r.Get("/highlights", s.handleHighlights)
	r.Get("/report", s.handleReport)
	r.Get("/report/download", s.handleReportDownload)

	r.Get("/charts/{series}.png", s.handleChart)
	r.Get("/highlights.png", s.handleHighlightsCard)
	r.Get("/export.xlsx", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", s.handleAPIRecords)
		r.Get("/summary", s.handleAPISummary)
		r.Get("/highlights", s.handleAPIHighlights)
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on %s", s.opts.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// errBadRange is returned for a min or max query parameter that is not a year.
var errBadRange = errors.New("invalid year range")

// yearRange reads ?min= and ?max=, defaulting to the dataset's default window
// and clamping into its bounds.
func (s *Server) yearRange(r *http.Request) (int, int, error) {
	lo, hi := s.data.DefaultRange()
	q := r.URL.Query()
	if v := q.Get("min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: min %q", errBadRange, v)
		}
		lo = n
	}
	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: max %q", errBadRange, v)
		}
		hi = n
	}
	lo, hi = s.data.ClampRange(lo, hi)
	return lo, hi, nil
}

// highlightsNarrative returns the narrative, generating it on first use.
func (s *Server) highlightsNarrative(ctx context.Context) string {
	s.narrMu.Lock()
	defer s.narrMu.Unlock()
	if s.narrDone {
		return s.narrText
	}

	lo, hi, _ := s.data.Bounds()
	text, err := s.opts.Narrative.Write(ctx, narrative.Input{Highlights: s.highlights, MinYear: lo, MaxYear: hi})
	if err != nil {
		log.Printf("api: narrative: %v", err)
		return ""
	}
	s.narrText, s.narrDone = text, true
	return text
}
