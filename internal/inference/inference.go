// Package inference is the boundary to the remote text-inference service.
package inference

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrUnavailable is returned by every call when no inference capability is
// configured for the run.
var ErrUnavailable = eris.New("inference: unavailable")

// Inferer turns a prompt into a free-text response.
type Inferer interface {
	Infer(ctx context.Context, prompt string, maxTokens int64) (string, error)
}

// InferFunc adapts a function to the Inferer interface.
type InferFunc func(ctx context.Context, prompt string, maxTokens int64) (string, error)

// Infer calls f.
func (f InferFunc) Infer(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	return f(ctx, prompt, maxTokens)
}

type unavailable struct{}

// Unavailable returns an Inferer that always fails with ErrUnavailable.
func Unavailable() Inferer { return unavailable{} }

func (unavailable) Infer(context.Context, string, int64) (string, error) {
	return "", ErrUnavailable
}

// IsUnavailable reports whether err carries ErrUnavailable.
func IsUnavailable(err error) bool {
	return eris.Is(err, ErrUnavailable)
}
