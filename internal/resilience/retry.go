// Package resilience provides retry with exponential backoff.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig is an exponential backoff policy. Zero fields take the
// DefaultRetryConfig value.
type RetryConfig struct {
	// Total calls, first one included; 1 disables retrying.
	MaxAttempts int

	// Wait before the second call, grown by Multiplier each time up to
	// MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	// Each wait is scaled by a random factor in [1-JitterFraction, 1+JitterFraction].
	JitterFraction float64

	// Decides whether err is worth another call. Nil means IsRetryable.
	ShouldRetry func(err error) bool

	// Called after a failed attempt that will be retried, before the wait.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns three attempts with delays of 1s then 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute / 2,
		Multiplier:     2,
	}
}

// DoVal calls fn until it succeeds, returns an error that should not be
// retried, or runs out of attempts. The last error is returned. Context
// cancellation ends the wait between attempts; there is no wait after the
// final attempt.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		switch {
		case err == nil:
			return val, nil
		case ctx.Err() != nil, !cfg.ShouldRetry(err), attempt >= cfg.MaxAttempts:
			return zero, err
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if !sleep(ctx, cfg.delay(attempt)) {
			return zero, err
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// normalized fills unset fields with the defaults of DefaultRetryConfig and
// IsRetryable.
func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	if c.Multiplier <= 0 {
		c.Multiplier = def.Multiplier
	}
	c.JitterFraction = max(c.JitterFraction, 0)
	if c.ShouldRetry == nil {
		c.ShouldRetry = IsRetryable
	}
	return c
}

// delay is the wait after the given failed attempt (1-based):
// InitialBackoff * Multiplier^(attempt-1), capped at MaxBackoff, then
// spread by JitterFraction.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialBackoff) * math.Pow(c.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(c.MaxBackoff))
	if c.JitterFraction > 0 {
		d *= 1 + c.JitterFraction*(2*rand.Float64()-1)
	}
	return time.Duration(math.Max(d, 0))
}

// LogRetries returns an OnRetry hook that warns about each failed attempt of op.
func LogRetries(op string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retry: attempt failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
	}
}
