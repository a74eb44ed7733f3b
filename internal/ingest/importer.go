package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lox/genevaclimate/internal/metrics"
	"github.com/lox/genevaclimate/internal/store"
)

// Importer loads a CSV into the weather table, replacing its contents.
type Importer struct {
	store   *store.Store
	fetcher *Fetcher
	clock   clockwork.Clock
}

func NewImporter(st *store.Store, fetcher *Fetcher, clock clockwork.Clock) *Importer {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Importer{store: st, fetcher: fetcher, clock: clock}
}

// Result describes a finished import.
type Result struct {
	RunID       string
	PayloadHash string
	Rows        int
	Flagged     int
	Skipped     bool // Payload identical to an earlier import
}

// Run imports source. Unless force is set, a payload already imported is skipped.
func (im *Importer) Run(ctx context.Context, source string, force bool) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	run, err := im.store.StartImportRun(ctx, res.RunID, source, im.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("start import run: %w", err)
	}

	err = im.run(ctx, source, force, run, res)

	run.Success = err == nil
	if err != nil {
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
	} else if res.Skipped {
		metrics.ImportRunsTotal.WithLabelValues("skipped").Inc()
	} else {
		metrics.ImportRunsTotal.WithLabelValues("success").Inc()
	}
	if cerr := im.store.CompleteImportRun(ctx, run, im.clock.Now()); cerr != nil {
		log.Printf("ingest: complete import run %s: %v", run.ID, cerr)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *Importer) run(ctx context.Context, source string, force bool, run *store.ImportRun, res *Result) error {
	start := im.clock.Now()
	payload, err := im.fetcher.Fetch(ctx, source)
	if err != nil {
		return err
	}

	res.PayloadHash = store.PayloadHash(payload)
	run.PayloadHash = sql.NullString{String: res.PayloadHash, Valid: true}

	if !force {
		seen, err := im.store.HasSourcePayload(ctx, res.PayloadHash)
		if err != nil {
			return fmt.Errorf("check payload: %w", err)
		}
		if seen {
			log.Printf("ingest: %s unchanged (sha256 %s), skipping", source, res.PayloadHash[:12])
			res.Skipped = true
			return nil
		}
	}

	records, err := ParseCSVBytes(payload)
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}
	run.RowsParsed = sql.NullInt64{Int64: int64(len(records)), Valid: true}

	for _, r := range records {
		if flags := ValidateRecord(r); len(flags) > 0 {
			res.Flagged++
			log.Printf("ingest: year %d flagged %s", r.Year, QualityFlagsToJSON(flags))
		}
	}
	run.RowsFlagged = sql.NullInt64{Int64: int64(res.Flagged), Valid: true}

	n, err := im.store.ReplaceRecords(ctx, records)
	if err != nil {
		return fmt.Errorf("store records: %w", err)
	}
	res.Rows = n
	run.RowsStored = sql.NullInt64{Int64: int64(n), Valid: true}
	metrics.ImportRowsTotal.WithLabelValues("stored").Add(float64(n))
	metrics.ImportRowsTotal.WithLabelValues("flagged").Add(float64(res.Flagged))

	if _, _, err := im.store.StoreSourcePayload(ctx, run.ID, source, payload, im.clock.Now()); err != nil {
		return fmt.Errorf("store payload: %w", err)
	}

	log.Printf("ingest: imported %d rows from %s in %s", n, source, im.clock.Since(start))
	return nil
}
