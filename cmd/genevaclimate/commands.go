package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/lox/genevaclimate/internal/api"
	"github.com/lox/genevaclimate/internal/charts"
	"github.com/lox/genevaclimate/internal/climate"
	"github.com/lox/genevaclimate/internal/export"
	"github.com/lox/genevaclimate/internal/imagegen"
	"github.com/lox/genevaclimate/internal/ingest"
	"github.com/lox/genevaclimate/internal/metrics"
	"github.com/lox/genevaclimate/internal/narrative"
	"github.com/lox/genevaclimate/internal/store"
)

// loadDataset reads every record from st into an immutable dataset.
func loadDataset(ctx context.Context, st *store.Store) (*climate.Dataset, error) {
	records, err := st.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := climate.NewDataset(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrDataUnavailable, err)
	}
	metrics.RecordsLoaded.Set(float64(ds.Len()))
	if lo, hi, ok := ds.Bounds(); ok {
		log.Printf("store: loaded %d records (%d-%d)", ds.Len(), lo, hi)
	} else {
		log.Printf("store: weather table is empty")
	}
	return ds, nil
}

func openDataset(ctx context.Context, path string) (*store.Store, *climate.Dataset, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ds, err := loadDataset(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, ds, nil
}

// YearRange selects an inclusive year range. Zero means the default window.
type YearRange struct {
	Min int `help:"First year (default ${default_min})." placeholder:"YEAR"`
	Max int `help:"Last year (default ${default_max})." placeholder:"YEAR"`
}

// resolve fills unset bounds from the default window and clamps into ds.
func (y YearRange) resolve(ds *climate.Dataset) (int, int) {
	lo, hi := ds.DefaultRange()
	if y.Min != 0 {
		lo = y.Min
	}
	if y.Max != 0 {
		hi = y.Max
	}
	return ds.ClampRange(lo, hi)
}

type ServeCmd struct {
	Addr      string `help:"Listen address." env:"GENEVA_ADDR" default:":8080"`
	ReportPDF string `help:"Bundled PDF report." name:"report-pdf" env:"GENEVA_REPORT_PDF" default:"${report_pdf}"`
	EmbedURL  string `help:"Embedded Power BI report URL." name:"embed-url" env:"GENEVA_EMBED_URL" default:"${embed_url}"`
	OpenAIKey string `help:"OpenAI API key for the highlights narrative (optional)." name:"openai-key" env:"OPENAI_API_KEY"`
}

func (c *ServeCmd) Run(g *Globals, ctx context.Context) error {
	st, ds, err := openDataset(ctx, g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	var writer narrative.Writer = narrative.TemplateWriter{}
	if c.OpenAIKey != "" {
		w, err := narrative.NewOpenAIWriter(c.OpenAIKey, writer)
		if err != nil {
			return err
		}
		writer = w
	} else {
		log.Printf("narrative: OPENAI_API_KEY not set, using template narrative")
	}

	if _, err := os.Stat(c.ReportPDF); err != nil {
		log.Printf("api: report PDF unavailable: %v", err)
	}

	server := api.NewServer(ds, api.Options{
		Addr:      c.Addr,
		ReportPDF: c.ReportPDF,
		EmbedURL:  c.EmbedURL,
		Narrative: writer,
	})
	return server.Run(ctx)
}

type ImportCmd struct {
	Source string `arg:"" help:"CSV file path, or an http(s):// or ftp:// URL."`
	Force  bool   `help:"Import even if this exact file was imported before."`
}

func (c *ImportCmd) Run(g *Globals, ctx context.Context) error {
	st, err := store.OpenWritable(g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	im := ingest.NewImporter(st, ingest.NewFetcher(), clockwork.NewRealClock())
	res, err := im.Run(ctx, c.Source, c.Force)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("%s already imported (run %s); use --force to re-import\n", c.Source, res.RunID)
		return nil
	}
	fmt.Printf("imported %d years into %s (%d flagged, run %s)\n", res.Rows, g.DB, res.Flagged, res.RunID)
	return nil
}

type HighlightsCmd struct{}

func (c *HighlightsCmd) Run(g *Globals, ctx context.Context) error {
	st, ds, err := openDataset(ctx, g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	hs, err := climate.Highlights(ds.Records())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, h := range hs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", h.Title, h.Record.Year, h.Formatted())
	}
	return tw.Flush()
}

type RenderCmd struct {
	YearRange `embed:""`
	Out       string `help:"Output directory." default:"charts" type:"path"`
}

func (c *RenderCmd) Run(g *Globals, ctx context.Context) error {
	st, ds, err := openDataset(ctx, g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}

	lo, hi := c.resolve(ds)
	records := ds.Filter(lo, hi)
	renderer := charts.NewRenderer(nil, clockwork.NewRealClock())

	eg, egCtx := errgroup.WithContext(ctx)
	for _, name := range charts.Names() {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := renderer.Chart(name, records, lo, hi)
			if err != nil {
				return err
			}
			return writeFile(filepath.Join(c.Out, name+".png"), data)
		})
	}
	eg.Go(func() error {
		hs, err := climate.Highlights(ds.Records())
		if err != nil {
			return err
		}
		boundMin, boundMax, _ := ds.Bounds()
		data, err := imagegen.GenerateHighlightsCard(imagegen.CardData{Highlights: hs, MinYear: boundMin, MaxYear: boundMax})
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(c.Out, "highlights.png"), data)
	})
	return eg.Wait()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Printf("charts: wrote %s (%d bytes)", path, len(data))
	return nil
}

type ExportCmd struct {
	YearRange `embed:""`
	Out       string `help:"Output XLSX file." default:"geneva_weather.xlsx" type:"path"`
}

// Run queries the range directly rather than loading the whole table.
func (c *ExportCmd) Run(g *Globals, ctx context.Context) error {
	st, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	lo, hi := c.Min, c.Max
	if lo == 0 {
		lo = climate.DefaultMinYear
	}
	if hi == 0 {
		hi = climate.DefaultMaxYear
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	records, err := st.RecordsBetween(ctx, lo, hi)
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, records, climate.TrendMeans(records, lo, hi)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d years (%d-%d) to %s\n", len(records), lo, hi, c.Out)
	return nil
}
