package main

import (
	"context"
	"log"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/genevaclimate/internal/api"
	"github.com/lox/genevaclimate/internal/climate"
)

// Globals are flags shared by every command.
type Globals struct {
	DB string `help:"Path to SQLite database." env:"GENEVA_DB" default:"geneva_weather.db" type:"path"`
}

type CLI struct {
	Globals

	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`

	Serve      ServeCmd      `cmd:"" default:"1" help:"Serve the climate dashboard."`
	Import     ImportCmd     `cmd:"" help:"Import a CSV into the weather table."`
	Highlights HighlightsCmd `cmd:"" help:"Print the yearly extremes."`
	Render     RenderCmd     `cmd:"" help:"Write the trend charts and highlights card as PNG files."`
	Export     ExportCmd     `cmd:"" help:"Write a year range to an XLSX workbook."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("genevaclimate"),
		kong.Description("Explore Geneva's yearly climate records."),
		kong.UsageOnError(),
		kong.Vars{
			"report_pdf":  api.DefaultReportPDF,
			"embed_url":   api.DefaultEmbedURL,
			"default_min": strconv.Itoa(climate.DefaultMinYear),
			"default_max": strconv.Itoa(climate.DefaultMaxYear),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if err := kctx.Run(&cli.Globals); err != nil {
		cancel()
		log.Fatalf("%s: %v", kctx.Command(), err)
	}
}
