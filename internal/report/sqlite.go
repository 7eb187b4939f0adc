package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/signal"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS flight_timing (
	run_id          TEXT NOT NULL,
	timestamp       TEXT NOT NULL,
	stage           TEXT NOT NULL,
	profile         TEXT NOT NULL,
	path            TEXT NOT NULL,
	processing_time REAL NOT NULL,
	status          TEXT NOT NULL,
	error           TEXT
);
CREATE TABLE IF NOT EXISTS batch_job (
	run_id          TEXT PRIMARY KEY,
	timestamp       TEXT NOT NULL,
	stage           TEXT NOT NULL,
	profile         TEXT NOT NULL,
	comment         TEXT,
	repository      TEXT,
	input_dir       TEXT,
	output_dir      TEXT,
	file_count      INTEGER NOT NULL,
	ok_count        INTEGER NOT NULL,
	fail_count      INTEGER NOT NULL,
	processing_time REAL NOT NULL,
	aborted         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS flight_event (
	run_id      TEXT NOT NULL,
	profile     TEXT NOT NULL,
	path        TEXT NOT NULL,
	output_path TEXT,
	kind        TEXT NOT NULL,
	name        TEXT NOT NULL,
	idx         REAL,
	value       REAL,
	stop_idx    REAL,
	detail      TEXT
);
`

const timeLayout = "2006-01-02 15:04:05.000"

// SQLite stores records in a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ ResultSink = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and makes sure the
// tables exist.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	// A single connection keeps concurrent flights from hitting "database is
	// locked".
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping report database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create report schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// DB exposes the underlying handle.
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// RecordTiming implements Sink.
func (s *SQLite) RecordTiming(ctx context.Context, t Timing) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flight_timing (run_id, timestamp, stage, profile, path, processing_time, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Timestamp.UTC().Format(timeLayout), t.Stage, t.Profile, t.Path,
		t.Elapsed.Seconds(), string(t.Status), nullString(t.Error),
	)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to store flight timing.", "path", t.Path, "error", err)
	}
}

// RecordBatch implements Sink.
func (s *SQLite) RecordBatch(ctx context.Context, b BatchSummary) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO batch_job (run_id, timestamp, stage, profile, comment, repository,
		 input_dir, output_dir, file_count, ok_count, fail_count, processing_time, aborted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.RunID, b.Timestamp.UTC().Format(timeLayout), b.Stage, b.Profile, b.Comment, b.Repository,
		b.InputDir, b.OutputDir, b.FileCount, b.OK, b.Fail, b.Elapsed.Seconds(), b.Aborted,
	)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to store batch summary.", "run_id", b.RunID, "error", err)
	}
}

// RecordResults implements ResultSink. All rows of one flight go in a single
// transaction.
func (s *SQLite) RecordResults(ctx context.Context, r FlightResults) {
	logger := ctxlog.FromContext(ctx)
	if err := s.insertResults(ctx, r); err != nil {
		logger.Warn("Failed to store flight results.", "path", r.Path, "error", err)
	}
}

func (s *SQLite) insertResults(ctx context.Context, r FlightResults) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flight_event (run_id, profile, path, output_path, kind, name, idx, value, stop_idx, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insert := func(kind signal.Kind, name string, idx, value, stop *float64, detail string) error {
		_, err := stmt.ExecContext(ctx, r.RunID, r.Profile, r.Path, r.OutputPath,
			kind.String(), name, idx, value, stop, nullString(detail))
		return err
	}

	for _, p := range r.PointEvents {
		if err := insert(signal.PointEvent, p.Name, signal.Float(p.Index), signal.Float(p.Value), nil, ""); err != nil {
			return err
		}
	}
	for _, p := range r.Instants {
		if err := insert(signal.InstantEvent, p.Name, signal.Float(p.Index), nil, nil, ""); err != nil {
			return err
		}
	}
	for _, p := range r.Phases {
		if err := insert(signal.Interval, p.Name, p.Slice.Start, nil, p.Slice.Stop, ""); err != nil {
			return err
		}
	}
	for _, a := range r.Approaches {
		detail := string(a.Type)
		if a.Airport != "" {
			detail += " " + a.Airport + "/" + a.Runway
		}
		if err := insert(signal.ApproachEvent, "Approach", a.Slice.Start, nil, a.Slice.Stop, detail); err != nil {
			return err
		}
	}
	for _, a := range r.Attributes {
		if err := insert(signal.Attribute, a.Name, nil, nil, nil, attributeText(a)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
