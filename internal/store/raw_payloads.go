package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// PayloadHash returns the hex sha256 of a source payload.
func PayloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// StoreSourcePayload stores a gzip-compressed copy of an imported CSV.
// duplicate is true when a payload with the same hash was already stored.
func (s *Store) StoreSourcePayload(ctx context.Context, runID, source string, payload []byte, fetchedAt time.Time) (hash string, duplicate bool, err error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return "", false, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", false, fmt.Errorf("close gzip: %w", err)
	}

	hash = PayloadHash(payload)

	var importRunID sql.NullString
	if runID != "" {
		importRunID = sql.NullString{String: runID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO source_payloads (import_run_id, fetched_at, source, payload_compressed, payload_hash, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO NOTHING
	`, importRunID, fetchedAt.UTC(), source, buf.Bytes(), hash, len(payload))
	if err != nil {
		return "", false, fmt.Errorf("insert source payload: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return "", false, err
	}
	return hash, n == 0, nil
}

// HasSourcePayload reports whether a payload with hash has been stored.
func (s *Store) HasSourcePayload(ctx context.Context, hash string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM source_payloads WHERE payload_hash = ?`, hash).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSourcePayload retrieves and decompresses a stored payload by hash.
func (s *Store) GetSourcePayload(ctx context.Context, hash string) ([]byte, error) {
	var compressed []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload_compressed FROM source_payloads WHERE payload_hash = ?`, hash).
		Scan(&compressed)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
