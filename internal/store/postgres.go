package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// pool is the subset of pgxpool.Pool used by PostgresStore.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore shares the ledger and cache across machines through pgxpool.
type PostgresStore struct {
	pool    pool
	closeFn func()
	ttl     time.Duration
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres connects and pings. The pipeline is single threaded, so the
// pool defaults to two connections.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, ttl time.Duration) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns, pgxCfg.MinConns = 2, 0
	if poolCfg != nil && poolCfg.MaxConns > 0 {
		pgxCfg.MaxConns = poolCfg.MaxConns
	}
	if poolCfg != nil && poolCfg.MinConns > 0 {
		pgxCfg.MinConns = poolCfg.MinConns
	}
	pgxCfg.MaxConnIdleTime = time.Minute

	p, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: p, closeFn: p.Close, ttl: cacheTTL(ttl)}, nil
}

const postgresSchema = `
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
	duration_ms        BIGINT NOT NULL DEFAULT 0,
	error              TEXT NOT NULL DEFAULT '',
	started_at         TIMESTAMPTZ NOT NULL,
	finished_at        TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS normalization_runs_started ON normalization_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS inference_responses (
	prompt_hash TEXT PRIMARY KEY,
	response    TEXT NOT NULL,
	stored_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS inference_responses_expiry ON inference_responses(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, inputPath, outputPath string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Status:     model.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO normalization_runs (id, input_path, output_path, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.InputPath, run.OutputPath, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: record run for %s", inputPath)
	}
	return run, nil
}

// CompleteRun stores the tallies and marks the run complete.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	args := append([]any{runID, string(model.RunStatusComplete)}, talliesOf(result)...)
	return s.finish(ctx, runID,
		`UPDATE normalization_runs SET status = $2, finished_at = now(),
			rows_read = $3, candidates = $4, duplicates_dropped = $5, rows_written = $6,
			inference_resolved = $7, fallback_resolved = $8, duration_ms = $9
		 WHERE id = $1`,
		args...)
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr string) error {
	return s.finish(ctx, runID,
		`UPDATE normalization_runs SET status = $2, finished_at = now(), error = $3 WHERE id = $1`,
		runID, string(model.RunStatusFailed), runErr)
}

func (s *PostgresStore) finish(ctx context.Context, runID, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	run, err := scanLedgerRow(s.pool.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM normalization_runs WHERE id = $1`, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	return run, eris.Wrapf(err, "postgres: get run %s", runID)
}

// ListRuns returns runs newest first. An empty status matches every run.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM normalization_runs
		 WHERE $1 = '' OR status = $1
		 ORDER BY started_at DESC LIMIT $2`,
		string(filter.Status), listLimit(filter.Limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanLedgerRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) GetCachedInference(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := s.pool.QueryRow(ctx,
		`SELECT response FROM inference_responses WHERE prompt_hash = $1 AND expires_at > now()`,
		key,
	).Scan(&response)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, eris.Wrap(err, "postgres: read cached response")
	}
	return response, true, nil
}

func (s *PostgresStore) SetCachedInference(ctx context.Context, key, response string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO inference_responses (prompt_hash, response, expires_at) VALUES ($1, $2, now() + $3::interval)
		 ON CONFLICT (prompt_hash) DO UPDATE SET response = EXCLUDED.response, stored_at = now(), expires_at = EXCLUDED.expires_at`,
		key, response, s.ttl,
	)
	return eris.Wrap(err, "postgres: cache response")
}

// DeleteExpiredInference prunes stale cache rows and reports how many went.
func (s *PostgresStore) DeleteExpiredInference(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM inference_responses WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune cache")
	}
	return int(tag.RowsAffected()), nil
}
