// Package extract resolves the output fields of one (record, variety) pair,
// preferring whole-row inference and falling back to deterministic parsing.
package extract

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sells-group/germplasm-cli/internal/address"
	"github.com/sells-group/germplasm-cli/internal/inference"
	"github.com/sells-group/germplasm-cli/internal/model"
	"github.com/sells-group/germplasm-cli/internal/normalize"
	"github.com/sells-group/germplasm-cli/internal/resilience"
	"github.com/sells-group/germplasm-cli/internal/species"
)

// Source identifies which path produced a record's fields.
type Source string

const (
	SourceInference Source = "inference"
	SourceFallback  Source = "fallback"
)

const maxLoggedResponse = 2000

// Options configures a Strategy.
type Options struct {
	// Inferer answers whole-row prompts. Nil means inference is unavailable.
	Inferer inference.Inferer
	// Species resolves plant names on the fallback path. Defaults to the
	// static table.
	Species species.Resolver
	// Retry bounds the attempts of the inference path.
	Retry resilience.RetryConfig
	// MaxTokens caps the response length. Defaults to 1024.
	MaxTokens int64
}

// Strategy resolves output fields for (record, variety) pairs.
type Strategy struct {
	inferer   inference.Inferer
	species   species.Resolver
	static    *species.Static
	retry     resilience.RetryConfig
	maxTokens int64
	// disabled is set once the inferer reports it is unavailable.
	disabled atomic.Bool
}

// New creates a Strategy.
func New(opts Options) *Strategy {
	s := &Strategy{
		inferer:   opts.Inferer,
		species:   opts.Species,
		static:    species.NewStatic(),
		retry:     opts.Retry,
		maxTokens: opts.MaxTokens,
	}
	if s.species == nil {
		s.species = s.static
	}
	if s.maxTokens <= 0 {
		s.maxTokens = 1024
	}
	if s.retry.OnRetry == nil {
		s.retry.OnRetry = resilience.LogRetries("extract: inference")
	}
	if s.inferer == nil {
		s.disabled.Store(true)
	}
	return s
}

// Resolve returns the field mapping for rec expanded with variety and the
// path that produced it. It never fails; every problem degrades to the
// deterministic path or to empty fields.
func (s *Strategy) Resolve(ctx context.Context, rec model.SourceRecord, cols model.Columns, variety string) (model.Fields, Source) {
	fields, ok := s.infer(ctx, rec)
	source := SourceInference
	if ok {
		// The row-level answer cannot know which variety is being expanded.
		delete(fields, model.FieldVariety)
		fields.Set(model.FieldVariety, variety)
	} else {
		fields = s.fallback(ctx, rec, cols, variety)
		source = SourceFallback
	}

	backstop(fields, rec, cols)
	return fields, source
}

// infer runs the whole-row inference path. Only call failures are retried.
// ok is false when every attempt failed, the answer did not parse, or
// inference is unavailable.
func (s *Strategy) infer(ctx context.Context, rec model.SourceRecord) (model.Fields, bool) {
	if s.disabled.Load() {
		return nil, false
	}

	prompt := BuildPrompt(rec)
	text, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
		text, err := s.inferer.Infer(ctx, prompt, s.maxTokens)
		if inference.IsUnavailable(err) {
			return "", resilience.Permanent(err)
		}
		return text, err
	})
	if err != nil {
		if inference.IsUnavailable(err) {
			s.disabled.Store(true)
			zap.L().Info("extract: inference unavailable, using deterministic parsing")
			return nil, false
		}
		zap.L().Warn("extract: inference failed, using deterministic parsing", zap.Error(err))
		return nil, false
	}

	// One cleanup and parse pass. A malformed answer is not retried.
	obj, err := inference.DecodeObject(text)
	if err != nil {
		zap.L().Warn("extract: unparsable inference response, using deterministic parsing",
			zap.Error(err),
			zap.String("response", truncate(text, maxLoggedResponse)),
		)
		return nil, false
	}
	return mapResponse(obj), true
}

// fallback composes the deterministic parsers over the role columns.
func (s *Strategy) fallback(ctx context.Context, rec model.SourceRecord, cols model.Columns, variety string) model.Fields {
	fields := model.Fields{}

	fields.Set(model.FieldDateReceived, normalize.FormatDate(cols.Value(rec, model.RoleDateReceived)))
	fields.Set(model.FieldIDAssigned, cols.Value(rec, model.RoleEntryNo))

	fields.Merge(address.Parse(normalize.Text(cols.Value(rec, model.RoleAddress))).Fields())

	plant := cols.Value(rec, model.RolePlantName)
	sp, err := s.species.Resolve(ctx, normalize.Text(plant), variety)
	if err != nil {
		sp = s.static.Lookup(normalize.Text(plant), variety)
	}
	fields.Merge(sp.Fields())
	fields.Set(model.FieldMaterialType, normalize.ClassifySpecimenType(plant, cols.Value(rec, model.RoleMaterial)))

	dose := cols.Value(rec, model.RoleDose)
	fields.Merge(normalize.SplitDoseList(dose).Fields())
	fields.Set(model.FieldTreatment, normalize.ClassifyTreatment(dose))

	return fields
}

// backstop re-derives the identity fields and doses from the source columns
// when neither path set them.
func backstop(fields model.Fields, rec model.SourceRecord, cols model.Columns) {
	if !fields.Has(model.FieldDateReceived) {
		fields.Set(model.FieldDateReceived, normalize.FormatDate(cols.Value(rec, model.RoleDateReceived)))
	}
	if !fields.Has(model.FieldIDAssigned) {
		fields.Set(model.FieldIDAssigned, cols.Value(rec, model.RoleEntryNo))
	}
	if !fields.HasDose() {
		fields.Merge(normalize.SplitDoseList(cols.Value(rec, model.RoleDose)).Fields())
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
