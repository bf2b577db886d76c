package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("broker unavailable")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("expected ok after 3 calls, got %q after %d", got, calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	var retries []int
	cfg := fastRetry(2)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) { retries = append(retries, attempt) }

	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		return errors.New("attempt failed")
	})
	if err == nil || err.Error() != "attempt failed" {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 2 || len(retries) != 1 {
		t.Errorf("expected 2 calls and 1 retry, got %d and %v", calls, retries)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("bad request")
	cfg := fastRetry(5)
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("expected single call with permanent error, got %d calls, %v", calls, err)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryFunc(ctx, fastRetry(3), func() error {
		t.Error("function should not run on canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, BackoffFactor: 2}
	if got := calculateBackoff(1, cfg); got != time.Second {
		t.Errorf("expected 1s, got %s", got)
	}
	if got := calculateBackoff(5, cfg); got != 3*time.Second {
		t.Errorf("expected cap 3s, got %s", got)
	}
}
