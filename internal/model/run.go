package model

import "time"

// RunStatus represents the current state of a normalization run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one normalization of an input file, as recorded in the run ledger.
// Result is set only once the run is complete.
type Run struct {
	ID         string     `json:"id"`
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
}

// Elapsed is the wall time of a finished run, zero while it is still running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunResult holds the final tallies of a run.
type RunResult struct {
	RowsRead          int   `json:"rows_read"`
	Candidates        int   `json:"candidates"`
	DuplicatesDropped int   `json:"duplicates_dropped"`
	RowsWritten       int   `json:"rows_written"`
	InferenceResolved int   `json:"inference_resolved"`
	FallbackResolved  int   `json:"fallback_resolved"`
	DurationMs        int64 `json:"duration_ms"`
}
