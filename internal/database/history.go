package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tallyfetch/internal/model"
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "tallyfetch.db"

var (
	// ErrRunNotFound is returned when no stored run matches an identifier.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an identifier prefix matches more
	// than one run.
	ErrAmbiguousRunID = errors.New("run identifier prefix matches several runs")
)

// HistoryDB stores run history in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		failures INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Fetch and process results of every format
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		format TEXT NOT NULL,
		operation TEXT NOT NULL,
		url TEXT NOT NULL,
		path TEXT NOT NULL,
		ok INTEGER NOT NULL,
		error TEXT,
		error_kind TEXT,
		bytes INTEGER DEFAULT 0,
		digest TEXT,
		value_count INTEGER DEFAULT 0,
		distinct_count INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		UNIQUE(run_id, format, operation)
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);

	-- Frequency tables, one row per entry in table order
	CREATE TABLE IF NOT EXISTS frequencies (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		format TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		value TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY(run_id, format, position)
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveBatch stores a batch with all its outcomes and frequency tables in a
// single transaction.
func (hdb *HistoryDB) SaveBatch(ctx context.Context, batch *model.Batch) (err error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, failures) VALUES (?, ?, ?, ?)`,
		batch.ID,
		formatTimestamp(batch.StartedAt),
		formatTimestamp(batch.FinishedAt),
		batch.Failures(),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, run := range batch.Runs {
		for _, o := range run.Outcomes() {
			if err = insertOutcome(ctx, tx, batch.ID, run.Source, o); err != nil {
				return err
			}
		}
		if run.Process != nil && run.Process.Succeeded() {
			if err = insertTable(ctx, tx, batch.ID, run.Source.Format, run.Table); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertOutcome(ctx context.Context, tx *sql.Tx, runID string, src model.Source, o *model.Outcome) error {
	var errText, errKind sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
		errKind = sql.NullString{String: model.KindOf(o.Err).String(), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
	INSERT INTO outcomes (run_id, format, operation, url, path, ok, error, error_kind,
		bytes, digest, value_count, distinct_count, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		string(o.Format),
		string(o.Operation),
		src.URL,
		o.Path,
		o.Succeeded(),
		errText,
		errKind,
		o.Bytes,
		o.Digest,
		o.Values,
		o.Distinct,
		o.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, runID string, f model.Format, table model.FrequencyTable) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO frequencies (run_id, format, position, kind, value, count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare frequency insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range table {
		if _, err := stmt.ExecContext(ctx, runID, string(f), i, int(e.Value.Kind()), e.Value.String(), e.Count); err != nil {
			return fmt.Errorf("failed to insert frequency: %w", err)
		}
	}
	return nil
}

// RunRecord summarizes a stored run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Failures   int
}

// ListRuns returns stored runs, most recent first. A limit of 0 or less
// returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, started_at, finished_at, failures FROM runs
	ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun returns the stored run with the given identifier.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var r RunRecord
	var started, finished string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, failures FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &started, &finished, &r.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to get run: %w", err)
	}
	r.StartedAt = parseTimestamp(started)
	r.FinishedAt = parseTimestamp(finished)
	return r, nil
}

// ResolveRunID returns the full identifier of the run whose identifier
// starts with prefix.
func (hdb *HistoryDB) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}

	rows, err := hdb.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRunID, prefix)
	}
}

// OutcomeRecord is a stored operation outcome.
type OutcomeRecord struct {
	Format    model.Format
	Operation model.Operation
	URL       string
	Path      string
	OK        bool
	Error     string
	ErrorKind string
	Bytes     int64
	Digest    string
	Values    int
	Distinct  int
	Duration  time.Duration
}

// GetOutcomes returns the outcomes stored for a run in insertion order.
func (hdb *HistoryDB) GetOutcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	query := `
	SELECT format, operation, url, path, ok, error, error_kind, bytes, digest,
		value_count, distinct_count, duration_ms
	FROM outcomes
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		var r OutcomeRecord
		var format, operation string
		var errText, errKind, digest sql.NullString
		var durationMS int64

		if err := rows.Scan(&format, &operation, &r.URL, &r.Path, &r.OK, &errText, &errKind,
			&r.Bytes, &digest, &r.Values, &r.Distinct, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}

		r.Format = model.Format(format)
		r.Operation = model.Operation(operation)
		r.Error = errText.String
		r.ErrorKind = errKind.String
		r.Digest = digest.String
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetTable returns the frequency table stored for a run and format.
// A format without a stored table yields an empty table.
func (hdb *HistoryDB) GetTable(ctx context.Context, runID string, f model.Format) (model.FrequencyTable, error) {
	query := `
	SELECT kind, value, count FROM frequencies
	WHERE run_id = ? AND format = ?
	ORDER BY position
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID, string(f))
	if err != nil {
		return nil, fmt.Errorf("failed to get frequency table: %w", err)
	}
	defer rows.Close()

	table := make(model.FrequencyTable, 0)
	for rows.Next() {
		var kind int
		var text string
		var count int
		if err := rows.Scan(&kind, &text, &count); err != nil {
			return nil, fmt.Errorf("failed to scan frequency: %w", err)
		}
		table = append(table, model.Entry{Value: model.NewValue(model.Kind(kind), text), Count: count})
	}

	return table, rows.Err()
}

// LatestRunIDs returns the identifiers of the n most recent runs that
// stored a frequency table for format, most recent first.
func (hdb *HistoryDB) LatestRunIDs(ctx context.Context, f model.Format, n int) ([]string, error) {
	query := `
	SELECT r.id FROM runs r
	JOIN outcomes o ON o.run_id = r.id
	WHERE o.format = ? AND o.operation = ? AND o.ok = 1
	ORDER BY r.started_at DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, string(f), string(model.OperationProcess), n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// storedTimestamp is the layout used for stored times. It sorts
// lexicographically in chronological order for UTC times.
const storedTimestamp = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestamp)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimestamp,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
