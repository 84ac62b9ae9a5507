package inference

import (
	"context"

	"github.com/sells-group/germplasm-cli/internal/resilience"
)

type retrying struct {
	inner Inferer
	cfg   resilience.RetryConfig
}

// WithRetry retries failed calls with exponential backoff. ErrUnavailable is
// never retried.
func WithRetry(inner Inferer, cfg resilience.RetryConfig) Inferer {
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.LogRetries("inference")
	}
	return &retrying{inner: inner, cfg: cfg}
}

func (r *retrying) Infer(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	return resilience.DoVal(ctx, r.cfg, func(ctx context.Context) (string, error) {
		text, err := r.inner.Infer(ctx, prompt, maxTokens)
		if IsUnavailable(err) {
			return "", resilience.Permanent(err)
		}
		return text, err
	})
}
