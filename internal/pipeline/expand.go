package pipeline

import (
	"context"

	"github.com/sells-group/germplasm-cli/internal/extract"
	"github.com/sells-group/germplasm-cli/internal/model"
	"github.com/sells-group/germplasm-cli/internal/normalize"
)

// Resolver produces the fields of one (record, variety) pair.
type Resolver interface {
	Resolve(ctx context.Context, rec model.SourceRecord, cols model.Columns, variety string) (model.Fields, extract.Source)
}

// ExpandStats counts expanded records by resolution path.
type ExpandStats struct {
	Inference int
	Fallback  int
}

// Varieties returns the variety list of rec: the split material cell, or a
// single empty variety when there is no material column.
func Varieties(rec model.SourceRecord, cols model.Columns) []string {
	if cols[model.RoleMaterial] == "" {
		return []string{""}
	}
	return normalize.SplitDelimitedList(cols.Value(rec, model.RoleMaterial))
}

// Expand emits one candidate per (record, variety) pair in input order. No
// record is dropped here. onResolved, if set, is called after every pair.
func Expand(ctx context.Context, records []model.SourceRecord, cols model.Columns, r Resolver, onResolved func(extract.Source)) ([]model.Fields, ExpandStats) {
	var out []model.Fields
	var stats ExpandStats
	for _, rec := range records {
		for _, variety := range Varieties(rec, cols) {
			fields, source := r.Resolve(ctx, rec, cols, variety)
			if fields == nil {
				fields = model.Fields{}
			}
			delete(fields, model.FieldVariety)
			fields.Set(model.FieldVariety, variety)

			switch source {
			case extract.SourceInference:
				stats.Inference++
			default:
				stats.Fallback++
			}
			if onResolved != nil {
				onResolved(source)
			}
			out = append(out, fields)
		}
	}
	return out, stats
}
