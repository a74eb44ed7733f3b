package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lox/genevaclimate/internal/models"
)

// ErrDataUnavailable means the weather table cannot be read: the file is
// missing or unreadable, or the table does not match the expected schema.
var ErrDataUnavailable = errors.New("weather data unavailable")

// WeatherTable is the name of the table holding yearly records.
const WeatherTable = "weather"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens an existing SQLite file read-only.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	return New(db), nil
}

// OpenWritable opens (creating if needed) a SQLite file for the import path.
func OpenWritable(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Rollback journal, not WAL: the served copy is opened with mode=ro.
	db.Exec("PRAGMA busy_timeout=5000")
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// recordColumns is the column order used by every weather query.
func recordColumns() []string {
	cols := []string{models.YearColumn}
	for _, f := range models.Fields {
		cols = append(cols, f.Column())
	}
	return cols
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func selectList() string {
	cols := recordColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// ValidateSchema checks that the weather table exists with every expected column.
func (s *Store) ValidateSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, WeatherTable)
	if err != nil {
		return fmt.Errorf("%w: read schema: %v", ErrDataUnavailable, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: read schema: %v", ErrDataUnavailable, err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: read schema: %v", ErrDataUnavailable, err)
	}
	if len(present) == 0 {
		return fmt.Errorf("%w: table %q not found", ErrDataUnavailable, WeatherTable)
	}

	var missing []string
	for _, c := range recordColumns() {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrDataUnavailable, strings.Join(missing, ", "))
	}
	return nil
}

// LoadAll validates the schema and returns every record ordered by year.
// A NULL measurement or a repeated year fails with ErrDataUnavailable.
func (s *Store) LoadAll(ctx context.Context) ([]models.WeatherRecord, error) {
	if err := s.ValidateSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectList()+` FROM `+WeatherTable+` ORDER BY `+quoteIdent(models.YearColumn)+` ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrDataUnavailable, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(records); i++ {
		if records[i].Year == records[i-1].Year {
			return nil, fmt.Errorf("%w: duplicate year %d", ErrDataUnavailable, records[i].Year)
		}
	}
	return records, nil
}

// RecordsBetween returns the records with minYear <= year <= maxYear, ordered by year.
func (s *Store) RecordsBetween(ctx context.Context, minYear, maxYear int) ([]models.WeatherRecord, error) {
	if err := s.ValidateSchema(ctx); err != nil {
		return nil, err
	}
	year := quoteIdent(models.YearColumn)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectList()+`
		FROM `+WeatherTable+`
		WHERE `+year+` BETWEEN ? AND ?
		ORDER BY `+year+` ASC
	`, minYear, maxYear)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrDataUnavailable, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.WeatherRecord, error) {
	var records []models.WeatherRecord
	for rows.Next() {
		var year sql.NullInt64
		vals := make([]sql.NullFloat64, len(models.Fields))
		dest := []any{&year}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrDataUnavailable, err)
		}
		if !year.Valid {
			return nil, fmt.Errorf("%w: row without %s", ErrDataUnavailable, models.YearColumn)
		}

		rec := models.WeatherRecord{Year: int(year.Int64)}
		for i, f := range models.Fields {
			if !vals[i].Valid {
				return nil, fmt.Errorf("%w: year %d has no %q", ErrDataUnavailable, rec.Year, f.Column())
			}
			f.Set(&rec, vals[i].Float64)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return records, nil
}

// ReplaceRecords swaps the whole weather table for records in one transaction.
func (s *Store) ReplaceRecords(ctx context.Context, records []models.WeatherRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+WeatherTable); err != nil {
		return 0, fmt.Errorf("clear weather: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns())), ", ")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+WeatherTable+` (`+selectList()+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		args := []any{r.Year}
		for _, f := range models.Fields {
			args = append(args, f.Value(r))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert year %d: %w", r.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}
