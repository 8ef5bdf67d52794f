package infra

import (
	"math"
	"testing"
	"time"
)

func TestFixedRetryPolicy(t *testing.T) {
	p := FixedRetryPolicy(5 * time.Second)

	if !p.Unbounded() {
		t.Error("fixed policy should be unbounded")
	}
	if p.RetryMax() != math.MaxInt {
		t.Errorf("RetryMax() = %d, want %d", p.RetryMax(), math.MaxInt)
	}
	for attempt := 0; attempt < 10; attempt++ {
		if got := p.Wait(attempt); got != 5*time.Second {
			t.Errorf("Wait(%d) = %v, want 5s", attempt, got)
		}
	}
}

func TestBoundedRetryPolicy(t *testing.T) {
	p := BoundedRetryPolicy(4, 100*time.Millisecond, 300*time.Millisecond)

	if p.Unbounded() {
		t.Error("bounded policy should not be unbounded")
	}
	if p.RetryMax() != 3 {
		t.Errorf("RetryMax() = %d, want 3", p.RetryMax())
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 300 * time.Millisecond},
		{5, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := p.Wait(tt.attempt); got != tt.want {
			t.Errorf("Wait(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicy_SingleAttempt(t *testing.T) {
	p := RetryPolicy{Delay: time.Second, MaxAttempts: 1}
	if p.RetryMax() != 0 {
		t.Errorf("RetryMax() = %d, want 0", p.RetryMax())
	}
}

func TestRetryPolicy_NegativeDelay(t *testing.T) {
	p := RetryPolicy{Delay: -time.Second}
	if got := p.Wait(3); got != 0 {
		t.Errorf("Wait() = %v, want 0", got)
	}
}

func TestRetryPolicy_BackoffIgnoresBounds(t *testing.T) {
	p := FixedRetryPolicy(2 * time.Second)
	if got := p.Backoff(time.Millisecond, time.Hour, 7, nil); got != 2*time.Second {
		t.Errorf("Backoff() = %v, want 2s", got)
	}
}
