package fanout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), "test_op", func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhausts(t *testing.T) {
	cfg := fastRetryConfig()
	calls := 0
	err := withRetry(context.Background(), cfg, "test_op", func() error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("withRetry() error = %v, want errTransient", err)
	}
	if calls != cfg.MaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls, cfg.MaxRetries+1)
	}
}

func TestWithRetryNoRetriesConfigured(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.MaxRetries = 0
	calls := 0
	err := withRetry(context.Background(), cfg, "test_op", func() error {
		calls++
		return errTransient
	})
	if err == nil {
		t.Fatal("withRetry() expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetryConfig()
	cfg.InitialBackoff = time.Hour // force the wait branch

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- withRetry(ctx, cfg, "test_op", func() error {
			calls++
			return errTransient
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("withRetry() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("withRetry() did not return after cancellation")
	}
}

func TestCalculateBackoffIsCappedWithJitter(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}

	// By attempt 10 the exponential value is far past the cap; jitter is
	// bounded at ±25% of the capped value.
	for i := 0; i < 50; i++ {
		backoff := calculateBackoff(cfg, 10)
		if backoff > 1250*time.Millisecond {
			t.Fatalf("backoff = %v, want <= cap plus 25%% jitter", backoff)
		}
		if backoff < 750*time.Millisecond {
			t.Fatalf("backoff = %v, want >= cap minus 25%% jitter", backoff)
		}
	}
}
