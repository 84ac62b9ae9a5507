package inference

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/germplasm-cli/pkg/anthropic"
)

// Anthropic implements Inferer with a single-turn Messages call.
type Anthropic struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
}

// NewAnthropic creates an Anthropic-backed Inferer throttled to rps requests
// per second. A non-positive rps disables throttling.
func NewAnthropic(client anthropic.Client, model string, rps float64, burst int) *Anthropic {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &Anthropic{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Model returns the model ID requests are sent to.
func (a *Anthropic) Model() string { return a.model }

// Infer sends prompt as a single user turn and returns the trimmed answer.
func (a *Anthropic) Infer(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "inference: rate limit wait")
	}

	c, err := a.client.Complete(ctx, anthropic.Request{
		Model:     a.model,
		MaxTokens: maxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		return "", eris.Wrap(err, "inference: complete")
	}
	c.Usage.Log(a.model, "inference")
	if c.Truncated() {
		zap.L().Warn("inference: response hit the token limit", zap.Int64("max_tokens", maxTokens))
	}

	text := strings.TrimSpace(c.Text)
	if text == "" {
		return "", eris.New("inference: empty response")
	}
	return text, nil
}
