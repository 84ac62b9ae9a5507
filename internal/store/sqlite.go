package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// SQLiteStore keeps the ledger and cache in a local modernc.org/sqlite file.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens the database file at dsn in WAL mode. Cached responses
// expire after ttl, or DefaultCacheTTL when ttl is zero.
func NewSQLite(dsn string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: open %s", dsn)
	}
	// One writer per process; WAL lets `runs list` read during a run.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA synchronous=NORMAL`); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: pragmas")
	}
	return &SQLiteStore{db: db, ttl: cacheTTL(ttl)}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS normalization_runs (
	id                 TEXT PRIMARY KEY,
	input_path         TEXT NOT NULL,
	output_path        TEXT NOT NULL,
	status             TEXT NOT NULL CHECK (status IN ('running', 'complete', 'failed')),
	rows_read          INTEGER NOT NULL DEFAULT 0,
	candidates         INTEGER NOT NULL DEFAULT 0,
	duplicates_dropped INTEGER NOT NULL DEFAULT 0,
	rows_written       INTEGER NOT NULL DEFAULT 0,
	inference_resolved INTEGER NOT NULL DEFAULT 0,
	fallback_resolved  INTEGER NOT NULL DEFAULT 0,
	duration_ms        INTEGER NOT NULL DEFAULT 0,
	error              TEXT NOT NULL DEFAULT '',
	started_at         DATETIME NOT NULL,
	finished_at        DATETIME
);
CREATE INDEX IF NOT EXISTS normalization_runs_started ON normalization_runs(started_at);

CREATE TABLE IF NOT EXISTS inference_responses (
	prompt_hash TEXT PRIMARY KEY,
	response    TEXT NOT NULL,
	stored_at   DATETIME NOT NULL,
	expires_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS inference_responses_expiry ON inference_responses(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, inputPath, outputPath string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Status:     model.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO normalization_runs (id, input_path, output_path, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.OutputPath, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: record run for %s", inputPath)
	}
	return run, nil
}

// CompleteRun stores the tallies and marks the run complete.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	args := append([]any{string(model.RunStatusComplete), time.Now().UTC()}, talliesOf(result)...)
	return s.finish(ctx, runID,
		`UPDATE normalization_runs SET status = ?, finished_at = ?,
			rows_read = ?, candidates = ?, duplicates_dropped = ?, rows_written = ?,
			inference_resolved = ?, fallback_resolved = ?, duration_ms = ?
		 WHERE id = ?`,
		append(args, runID)...)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr string) error {
	return s.finish(ctx, runID,
		`UPDATE normalization_runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(model.RunStatusFailed), time.Now().UTC(), runErr, runID)
}

func (s *SQLiteStore) finish(ctx context.Context, runID, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	run, err := scanLedgerRow(s.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM normalization_runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	return run, eris.Wrapf(err, "sqlite: get run %s", runID)
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM normalization_runs
		 WHERE ? = '' OR status = ?
		 ORDER BY started_at DESC LIMIT ?`,
		string(filter.Status), string(filter.Status), listLimit(filter.Limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanLedgerRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) GetCachedInference(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		`SELECT response FROM inference_responses WHERE prompt_hash = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&response)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, eris.Wrap(err, "sqlite: read cached response")
	}
	return response, true, nil
}

func (s *SQLiteStore) SetCachedInference(ctx context.Context, key, response string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO inference_responses (prompt_hash, response, stored_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, response, now, now.Add(s.ttl),
	)
	return eris.Wrap(err, "sqlite: cache response")
}

// DeleteExpiredInference prunes stale cache rows and reports how many went.
func (s *SQLiteStore) DeleteExpiredInference(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM inference_responses WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune cache")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
