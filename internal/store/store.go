// Package store persists the run ledger and the inference response cache.
package store

import (
	"context"
	"time"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// DefaultCacheTTL is how long a cached inference response stays valid.
const DefaultCacheTTL = 30 * 24 * time.Hour

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for normalization runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, inputPath, outputPath string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, runErr string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Inference cache, keyed by prompt hash.
	GetCachedInference(ctx context.Context, key string) (string, bool, error)
	SetCachedInference(ctx context.Context, key, response string) error
	DeleteExpiredInference(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Tallies are stored as plain columns so the ledger can be queried without
// decoding a blob. Order matches talliesOf.
const (
	tallyColumns   = `rows_read, candidates, duplicates_dropped, rows_written, inference_resolved, fallback_resolved, duration_ms`
	ledgerColumns  = `id, input_path, output_path, status, ` + tallyColumns + `, error, started_at, finished_at`
	defaultListCap = 100
)

func talliesOf(r *model.RunResult) []any {
	if r == nil {
		r = &model.RunResult{}
	}
	return []any{r.RowsRead, r.Candidates, r.DuplicatesDropped, r.RowsWritten, r.InferenceResolved, r.FallbackResolved, r.DurationMs}
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLedgerRow reads one row selected with ledgerColumns.
func scanLedgerRow(row rowScanner) (*model.Run, error) {
	var (
		run      model.Run
		status   string
		tally    model.RunResult
		finished *time.Time
	)
	err := row.Scan(&run.ID, &run.InputPath, &run.OutputPath, &status,
		&tally.RowsRead, &tally.Candidates, &tally.DuplicatesDropped, &tally.RowsWritten,
		&tally.InferenceResolved, &tally.FallbackResolved, &tally.DurationMs,
		&run.Error, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}

	run.Status = model.RunStatus(status)
	if finished != nil {
		run.FinishedAt = *finished
	}
	if run.Status == model.RunStatusComplete {
		run.Result = &tally
	}
	return &run, nil
}

func cacheTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultCacheTTL
	}
	return ttl
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListCap
	}
	return limit
}
