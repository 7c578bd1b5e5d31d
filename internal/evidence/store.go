// Package evidence persists an HMAC-signed audit trail of anonymization
// runs. Every processed document, in single-file or batch mode, produces
// one signed record in SQLite, so an operator can later show which files
// were scrubbed, when, and how much was removed, and verify the records
// were not tampered with.
package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	anonotel "github.com/rebeccax06/anonymize-pdf/internal/otel"
)

var tracer = anonotel.Tracer("github.com/rebeccax06/anonymize-pdf/internal/evidence")

// Store persists HMAC-signed run records in SQLite.
type Store struct {
	db     *sql.DB
	signer *Signer
}

// Record is the audit entry for one anonymized document.
type Record struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	Pages      int            `json:"pages"`
	Redactions int            `json:"redactions"`
	Categories map[string]int `json:"categories,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Signature  string         `json:"signature"`
}

// NewStore opens (creating if needed) a run-record store with HMAC signing.
func NewStore(dbPath string, signingKey string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		redactions INTEGER NOT NULL,
		record_json TEXT NOT NULL,
		signature TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	signer, err := NewSigner(signingKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer: %w", err)
	}

	return &Store{db: db, signer: signer}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store saves a run record with an HMAC signature.
func (s *Store) Store(ctx context.Context, rec *Record) error {
	ctx, span := tracer.Start(ctx, "evidence.store",
		trace.WithAttributes(
			attribute.String("record.id", rec.ID),
			attribute.String("record.input", rec.Input),
		))
	defer span.End()

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	signature, err := s.signer.Sign(recJSON)
	if err != nil {
		return fmt.Errorf("signing record: %w", err)
	}
	rec.Signature = signature

	recJSONWithSig, _ := json.Marshal(rec)

	query := `INSERT INTO runs (id, timestamp, input, output, redactions, record_json, signature)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, rec.Input, rec.Output, rec.Redactions,
		string(recJSONWithSig), signature,
	)
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

// Get retrieves a run record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := tracer.Start(ctx, "evidence.get",
		trace.WithAttributes(attribute.String("record.id", id)))
	defer span.End()

	var recJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM runs WHERE id = ?`, id).Scan(&recJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling record: %w", err)
	}
	return &rec, nil
}

// List returns the most recent run records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "evidence.list")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_json FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var recJSON string
		if err := rows.Scan(&recJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Verify re-signs the stored record (minus its signature) and compares it
// against the stored signature.
func (s *Store) Verify(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "evidence.verify",
		trace.WithAttributes(attribute.String("record.id", id)))
	defer span.End()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	stored := rec.Signature
	rec.Signature = ""
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling record: %w", err)
	}
	return s.signer.Verify(recJSON, stored), nil
}
