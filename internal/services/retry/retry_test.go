package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func alwaysRetry(error) (time.Duration, bool) { return 0, true }

func TestDoReturnsFirstSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Policy{MaxAttempts: 3}, alwaysRetry, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("unexpected result %q after %d calls", got, calls)
	}
}

func TestDoRetriesWithExponentialBackoff(t *testing.T) {
	var delays []time.Duration
	policy := Policy{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    250 * time.Millisecond,
		Sleeper:     func(d time.Duration) { delays = append(delays, d) },
	}
	calls := 0
	got, err := Do(context.Background(), policy, alwaysRetry, func(context.Context) (int, error) {
		calls++
		if calls < 4 {
			return 0, errTransient
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d = %s, want %s", i, delays[i], want[i])
		}
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	fatal := errors.New("bad request")
	_, err := Do(context.Background(), Policy{MaxAttempts: 5, Sleeper: func(time.Duration) {}}, func(error) (time.Duration, bool) {
		return 0, false
	}, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestDoWrapsExhaustedAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, Sleeper: func(time.Duration) {}}, alwaysRetry, func(context.Context) (string, error) {
		calls++
		return "", errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Fatalf("expected attempt count in error, got %q", err.Error())
	}
}

func TestDoHonorsRetryAfter(t *testing.T) {
	var delays []time.Duration
	policy := Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Sleeper:     func(d time.Duration) { delays = append(delays, d) },
	}
	_, _ = Do(context.Background(), policy, func(error) (time.Duration, bool) {
		return 30 * time.Second, true
	}, func(context.Context) (string, error) {
		return "", errTransient
	})
	if len(delays) != 1 || delays[0] != 5*time.Second {
		t.Fatalf("expected retry-after capped at max delay, got %v", delays)
	}
}

func TestDoAppliesAttemptTimeout(t *testing.T) {
	policy := Policy{MaxAttempts: 1, AttemptTimeout: 10 * time.Millisecond}
	_, err := Do(context.Background(), policy, alwaysRetry, func(ctx context.Context) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatal("expected attempt deadline")
		}
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !IsTimeout(err) {
		t.Fatal("expected IsTimeout to report the attempt deadline")
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 5, Sleeper: func(time.Duration) {}}, alwaysRetry, func(context.Context) (string, error) {
		calls++
		cancel()
		return "", errTransient
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected cancellation to stop retries, got %d calls", calls)
	}
}

func TestIsTimeoutIgnoresCancellation(t *testing.T) {
	if IsTimeout(context.Canceled) {
		t.Fatal("cancellation is not a timeout")
	}
	if IsTimeout(nil) {
		t.Fatal("nil is not a timeout")
	}
}

func TestZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{}, alwaysRetry, func(context.Context) (string, error) {
		calls++
		return "", errTransient
	})
	if calls != 1 {
		t.Fatalf("expected one attempt, got %d", calls)
	}
	if err != errTransient {
		t.Fatalf("expected unwrapped error for single attempt, got %v", err)
	}
}
