// Package species maps free-text plant names to a standardized common name
// and Latin binomial.
package species

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// Resolver resolves a plant name and variety to a standardized species.
type Resolver interface {
	Resolve(ctx context.Context, plantName, varietyName string) (model.Species, error)
}

// fallbackResolver tries primary and uses fallback when it fails.
type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

// WithFallback returns a Resolver that answers from primary and falls back
// to fallback on any primary error.
func WithFallback(primary, fallback Resolver) Resolver {
	return &fallbackResolver{primary: primary, fallback: fallback}
}

func (r *fallbackResolver) Resolve(ctx context.Context, plantName, varietyName string) (model.Species, error) {
	sp, err := r.primary.Resolve(ctx, plantName, varietyName)
	if err == nil {
		return sp, nil
	}
	zap.L().Warn("species: primary resolver failed, using fallback",
		zap.String("plant_name", plantName),
		zap.Error(err),
	)
	return r.fallback.Resolve(ctx, plantName, varietyName)
}
