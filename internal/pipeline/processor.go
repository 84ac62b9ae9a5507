// Package pipeline turns a shipment spreadsheet into the normalized output
// table: read, expand varieties, deduplicate, project and write.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/germplasm-cli/internal/extract"
	"github.com/sells-group/germplasm-cli/internal/metrics"
	"github.com/sells-group/germplasm-cli/internal/model"
	"github.com/sells-group/germplasm-cli/internal/store"
	"github.com/sells-group/germplasm-cli/internal/tabular"
)

// Options configures a Processor.
type Options struct {
	Resolver Resolver
	// Store records the run ledger. Optional.
	Store store.Store
	// Metrics counts resolutions and run tallies. Optional.
	Metrics *metrics.Recorder
	// Sheet names the output worksheet. Defaults to "Sheet1".
	Sheet string
	// DryRun resolves everything but writes no output file.
	DryRun bool
}

// Processor runs the batch over one input file at a time.
type Processor struct {
	resolver Resolver
	store    store.Store
	metrics  *metrics.Recorder
	sheet    string
	dryRun   bool
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &Processor{
		resolver: opts.Resolver,
		store:    opts.Store,
		metrics:  opts.Metrics,
		sheet:    sheet,
		dryRun:   opts.DryRun,
	}
}

// Run processes in and writes the result to out. On error no output file is
// produced.
func (p *Processor) Run(ctx context.Context, in, out string) (*model.RunResult, error) {
	start := time.Now()
	log := zap.L().With(zap.String("input", in), zap.String("output", out))

	var runID string
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, in, out)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
		log = log.With(zap.String("run_id", runID))
	}
	log.Info("pipeline: starting run", zap.Bool("dry_run", p.dryRun))

	result, err := p.process(ctx, log, in, out)
	if err != nil {
		log.Error("pipeline: run failed", zap.Error(err))
		if p.metrics != nil {
			p.metrics.RunFailed()
		}
		if runID != "" {
			if failErr := p.store.FailRun(ctx, runID, err.Error()); failErr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(failErr))
			}
		}
		return nil, err
	}

	result.DurationMs = time.Since(start).Milliseconds()
	if p.metrics != nil {
		p.metrics.RunComplete(result)
	}
	if runID != "" {
		if err := p.store.CompleteRun(ctx, runID, result); err != nil {
			log.Warn("pipeline: failed to record run result", zap.Error(err))
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("rows_read", result.RowsRead),
		zap.Int("candidates", result.Candidates),
		zap.Int("duplicates_dropped", result.DuplicatesDropped),
		zap.Int("rows_written", result.RowsWritten),
		zap.Int("inference_resolved", result.InferenceResolved),
		zap.Int("fallback_resolved", result.FallbackResolved),
		zap.Int64("duration_ms", result.DurationMs),
	)
	return result, nil
}

func (p *Processor) process(ctx context.Context, log *zap.Logger, in, out string) (*model.RunResult, error) {
	table, err := tabular.Read(in)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read input")
	}

	cols := model.ResolveColumns(table.Columns)
	roleFields := make([]zap.Field, 0, len(model.Roles))
	for _, role := range model.Roles {
		roleFields = append(roleFields, zap.String("column_"+string(role), cols[role]))
	}
	log.Info("pipeline: loaded input",
		append([]zap.Field{
			zap.Int("rows", len(table.Records)),
			zap.Int("columns", len(table.Columns)),
			zap.Strings("column_names", table.Columns),
		}, roleFields...)...,
	)

	var onResolved func(extract.Source)
	if p.metrics != nil {
		onResolved = func(s extract.Source) { p.metrics.Resolution(string(s)) }
	}
	candidates, stats := Expand(ctx, table.Records, cols, p.resolver, onResolved)
	unique := Dedup(candidates)
	rows := Project(unique, model.Schema)

	result := &model.RunResult{
		RowsRead:          len(table.Records),
		Candidates:        len(candidates),
		DuplicatesDropped: len(candidates) - len(unique),
		RowsWritten:       len(rows),
		InferenceResolved: stats.Inference,
		FallbackResolved:  stats.Fallback,
	}

	if p.dryRun {
		result.RowsWritten = 0
		log.Info("pipeline: dry run, skipping write", zap.Int("rows", len(rows)))
		return result, nil
	}

	if err := tabular.Write(out, p.sheet, model.Schema, rows); err != nil {
		return nil, eris.Wrap(err, "pipeline: write output")
	}
	return result, nil
}
