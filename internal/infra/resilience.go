// Package infra provides shared infrastructure components for the MediaWiki client.
// It holds the retry policy that drives the request layer's transport.
package infra

import (
	"math"
	"net/http"
	"time"
)

// DefaultRetryDelay is the fixed pause between attempts of one logical call.
const DefaultRetryDelay = 5 * time.Second

// RetryPolicy decides how long to wait between attempts and when to give up.
//
// The zero MaxAttempts means "retry forever", which is the default behaviour of the
// request layer: transport and HTTP status failures loop until the server answers.
type RetryPolicy struct {
	Delay       time.Duration // Wait before the first retry
	MaxAttempts int           // Total attempts including the first; 0 is unbounded
	Multiplier  float64       // Delay growth per retry; <= 1 keeps the delay fixed
	MaxDelay    time.Duration // Upper bound for a grown delay; 0 is no bound
}

// FixedRetryPolicy retries forever with a constant delay.
func FixedRetryPolicy(delay time.Duration) RetryPolicy {
	return RetryPolicy{Delay: delay}
}

// BoundedRetryPolicy gives up after maxAttempts, doubling the delay up to maxDelay.
func BoundedRetryPolicy(maxAttempts int, delay, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		Delay:       delay,
		MaxAttempts: maxAttempts,
		Multiplier:  2,
		MaxDelay:    maxDelay,
	}
}

// Unbounded reports whether the policy never gives up.
func (p RetryPolicy) Unbounded() bool {
	return p.MaxAttempts <= 0
}

// RetryMax converts the policy into a count of retries after the first attempt.
func (p RetryPolicy) RetryMax() int {
	if p.Unbounded() {
		return math.MaxInt
	}
	return p.MaxAttempts - 1
}

// Wait returns the delay before retry number attempt (0-based).
func (p RetryPolicy) Wait(attempt int) time.Duration {
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}
	if p.Multiplier <= 1 || attempt <= 0 {
		return delay
	}

	grown := float64(delay) * math.Pow(p.Multiplier, float64(attempt))
	if p.MaxDelay > 0 && grown > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if grown > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(grown)
}

// Backoff adapts the policy to the retrying HTTP client's backoff hook.
// The min/max bounds of the hook are ignored; the policy owns the schedule.
func (p RetryPolicy) Backoff(_, _ time.Duration, attempt int, _ *http.Response) time.Duration {
	return p.Wait(attempt)
}
