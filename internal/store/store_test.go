package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/genevaclimate/internal/models"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(openMemory(t))
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testRecords() []models.WeatherRecord {
	return []models.WeatherRecord{
		{Year: 2010, AvgTempC: 9.0, MaxTempC: 31.0, MinTempC: -12.3, TotalRainMM: 700, SnowCM: 45, SunshineHours: 1750},
		{Year: 1990, AvgTempC: 10.0, MaxTempC: 33.1, MinTempC: -8.2, TotalRainMM: 850, SnowCM: 20, SunshineHours: 1900},
		{Year: 2000, AvgTempC: 12.5, MaxTempC: 35.4, MinTempC: -5.0, TotalRainMM: 1100, SnowCM: 5, SunshineHours: 2100},
	}
}

func TestReplaceAndLoadAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n, err := store.ReplaceRecords(ctx, testRecords())
	if err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	if n != 3 {
		t.Errorf("stored = %d, want 3", n)
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []int{1990, 2000, 2010} {
		if records[i].Year != want {
			t.Errorf("records[%d].Year = %d, want %d", i, records[i].Year, want)
		}
	}
	if records[1].AvgTempC != 12.5 || records[1].SunshineHours != 2100 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestReplaceRecords_Replaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.ReplaceRecords(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ReplaceRecords(ctx, testRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 || records[0].Year != 2010 {
		t.Errorf("records = %+v, want only 2010", records)
	}
}

func TestReplaceRecords_DuplicateYearRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.ReplaceRecords(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	dup := append(testRecords(), models.WeatherRecord{Year: 2000})
	if _, err := store.ReplaceRecords(ctx, dup); err == nil {
		t.Fatal("expected unique constraint error")
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want previous 3 rows kept", len(records))
	}
}

func TestRecordsBetween(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	if _, err := store.ReplaceRecords(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}

	records, err := store.RecordsBetween(ctx, 1995, 2010)
	if err != nil {
		t.Fatalf("RecordsBetween: %v", err)
	}
	if len(records) != 2 || records[0].Year != 2000 || records[1].Year != 2010 {
		t.Errorf("records = %+v, want 2000 and 2010", records)
	}

	none, err := store.RecordsBetween(ctx, 1800, 1850)
	if err != nil {
		t.Fatalf("RecordsBetween: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len(none) = %d, want 0", len(none))
	}
}

func TestLoadAll_MissingTable(t *testing.T) {
	store := New(openMemory(t))

	_, err := store.LoadAll(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestLoadAll_MissingColumn(t *testing.T) {
	db := openMemory(t)
	if _, err := db.Exec(`CREATE TABLE weather ("Year" INTEGER, "Avg Temp (°C)" REAL, "Total Rain (mm)" REAL)`); err != nil {
		t.Fatal(err)
	}

	_, err := New(db).LoadAll(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

// pandasTable mirrors a table written by DataFrame.to_sql: no constraints, extra columns allowed.
func pandasTable(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`CREATE TABLE weather (
		"Year" INTEGER, "Avg Temp (°C)" REAL, "Max Temp" REAL, "Min Temp" REAL,
		"Total Rain (mm)" REAL, "Snow (cm)" REAL, "Sunshine Hours" REAL, "Station" TEXT)`); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAll_NullValue(t *testing.T) {
	db := openMemory(t)
	pandasTable(t, db)
	if _, err := db.Exec(`INSERT INTO weather VALUES (1990, 10.0, 33.0, -8.0, NULL, 20, 1900, 'GVA')`); err != nil {
		t.Fatal(err)
	}

	_, err := New(db).LoadAll(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestLoadAll_DuplicateYear(t *testing.T) {
	db := openMemory(t)
	pandasTable(t, db)
	for i := 0; i < 2; i++ {
		if _, err := db.Exec(`INSERT INTO weather VALUES (1990, 10.0, 33.0, -8.0, 800, 20, 1900, 'GVA')`); err != nil {
			t.Fatal(err)
		}
	}

	_, err := New(db).LoadAll(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestLoadAll_ExtraColumnsIgnored(t *testing.T) {
	db := openMemory(t)
	pandasTable(t, db)
	if _, err := db.Exec(`INSERT INTO weather VALUES (1962, 9.1, 30, -15, 900, 60, 1700, 'GVA')`); err != nil {
		t.Fatal(err)
	}

	records, err := New(db).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 || records[0].SnowCM != 60 {
		t.Errorf("records = %+v", records)
	}
}

func TestOpen_ReadOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geneva_weather.db")
	ctx := context.Background()

	w, err := OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	if err := w.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := w.ReplaceRecords(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	records, err := r.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestImportRunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	latest, err := store.LatestImportRun(ctx)
	if err != nil {
		t.Fatalf("LatestImportRun: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected no runs, got %+v", latest)
	}

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run, err := store.StartImportRun(ctx, "run-1", "geneva.csv", start)
	if err != nil {
		t.Fatalf("StartImportRun: %v", err)
	}
	run.Success = true
	run.RowsParsed = sql.NullInt64{Int64: 63, Valid: true}
	run.RowsStored = sql.NullInt64{Int64: 63, Valid: true}
	if err := store.CompleteImportRun(ctx, run, start.Add(2*time.Second)); err != nil {
		t.Fatalf("CompleteImportRun: %v", err)
	}

	latest, err = store.LatestImportRun(ctx)
	if err != nil {
		t.Fatalf("LatestImportRun: %v", err)
	}
	if latest == nil || latest.ID != "run-1" {
		t.Fatalf("latest = %+v, want run-1", latest)
	}
	if !latest.Success || latest.RowsStored.Int64 != 63 {
		t.Errorf("latest = %+v", latest)
	}
	if !latest.FinishedAt.Valid {
		t.Error("expected FinishedAt to be set")
	}
}

func TestSourcePayloadDedup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	payload := []byte("Year,Avg Temp (°C)\n1990,10.0\n")
	now := time.Now()

	hash, dup, err := store.StoreSourcePayload(ctx, "", "geneva.csv", payload, now)
	if err != nil {
		t.Fatalf("StoreSourcePayload: %v", err)
	}
	if dup {
		t.Error("first store reported duplicate")
	}
	if hash != PayloadHash(payload) {
		t.Errorf("hash = %s, want %s", hash, PayloadHash(payload))
	}

	_, dup, err = store.StoreSourcePayload(ctx, "", "geneva.csv", payload, now)
	if err != nil {
		t.Fatalf("StoreSourcePayload: %v", err)
	}
	if !dup {
		t.Error("second store should be a duplicate")
	}

	ok, err := store.HasSourcePayload(ctx, hash)
	if err != nil || !ok {
		t.Fatalf("HasSourcePayload = %v, %v", ok, err)
	}

	got, err := store.GetSourcePayload(ctx, hash)
	if err != nil {
		t.Fatalf("GetSourcePayload: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload round trip mismatch: %q", got)
	}
}

func TestMigrationVersion(t *testing.T) {
	store := setupTestStore(t)
	v, err := store.MigrationVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != len(migrations) {
		t.Errorf("version = %d, want %d", v, len(migrations))
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
