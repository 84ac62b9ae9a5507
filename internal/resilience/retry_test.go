package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoVal_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" {
		t.Errorf("expected %q, got %q", "ok", val)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_ReturnsValueOnSuccess(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("unparsable response")
		}
		return "hello", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected %q, got %q", "hello", val)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoVal_ExhaustsRetries(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (int, error) {
		calls++
		return 42, errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if val != 0 {
		t.Errorf("expected zero value on failure, got %d", val)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoVal_PermanentError_NoRetry(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (string, error) {
		calls++
		return "", Permanent(errors.New("service unavailable"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry for permanent), got %d", calls)
	}
}

func TestDoVal_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
		Multiplier:     2.0,
	}
	_, err := DoVal(ctx, cfg, func(_ context.Context) (string, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return "", errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls before cancel, got %d", calls)
	}
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	var calls int
	cfg := fastConfig(3)
	cfg.ShouldRetry = func(err error) bool {
		return err.Error() == "retry me"
	}

	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("retry me")
		}
		return "", errors.New("stop")
	})
	if err == nil || err.Error() != "stop" {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDoVal_OnRetryCallback(t *testing.T) {
	var retryAttempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error) {
		retryAttempts = append(retryAttempts, attempt)
	}

	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		return "", errors.New("fail")
	})

	// No callback (and no sleep) after the final attempt.
	if len(retryAttempts) != 2 {
		t.Fatalf("expected 2 OnRetry calls, got %d", len(retryAttempts))
	}
	if retryAttempts[0] != 1 || retryAttempts[1] != 2 {
		t.Errorf("expected attempts [1, 2], got %v", retryAttempts)
	}
}

func TestDoVal_ZeroConfigUsesDefaults(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), RetryConfig{}, func(_ context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), true},
		{"permanent", Permanent(errors.New("boom")), false},
		{"wrapped permanent", fmt.Errorf("call: %w", Permanent(errors.New("boom"))), false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("expected nil")
	}
}

func TestDelay_ExponentialGrowth(t *testing.T) {
	cfg := DefaultRetryConfig().normalized()

	expected := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	for i, want := range expected {
		if got := cfg.delay(i + 1); got != want {
			t.Errorf("after attempt %d: expected %v, got %v", i+1, want, got)
		}
	}
}

func TestNormalized_Defaults(t *testing.T) {
	cfg := RetryConfig{JitterFraction: -1}.normalized()
	if cfg.MaxAttempts != 3 || cfg.InitialBackoff != time.Second || cfg.Multiplier != 2.0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JitterFraction != 0 {
		t.Errorf("expected negative jitter clamped to 0, got %v", cfg.JitterFraction)
	}
	if cfg.ShouldRetry == nil {
		t.Error("expected ShouldRetry defaulted to IsRetryable")
	}
}

func TestDelay_CapsAtMax(t *testing.T) {
	cfg := (RetryConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     10.0,
	}).normalized()

	if delay := cfg.delay(6); delay > 5*time.Second {
		t.Errorf("expected delay capped at 5s, got %v", delay)
	}
}

func TestDelay_WithJitter(t *testing.T) {
	cfg := (RetryConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	}).normalized()

	seen := make(map[time.Duration]bool)
	for i := 0; i < 100; i++ {
		d := cfg.delay(1)
		seen[d] = true
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Errorf("delay %v outside expected range [500ms, 1500ms]", d)
		}
	}
	if len(seen) < 2 {
		t.Error("expected jitter to produce varying delays")
	}
}

func TestLogRetries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	LogRetries("extract: inference")(2, errors.New("overloaded"))

	entries := logs.AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["op"] != "extract: inference" || fields["attempt"] != int64(2) || fields["error"] != "overloaded" {
		t.Errorf("unexpected fields %v", fields)
	}
}
