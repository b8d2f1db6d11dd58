// Package resilience retries transient failures of outbound HTTP calls.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy bounds one retried operation. The zero value retries twice with a
// doubling delay starting at 500ms.
type Policy struct {
	// Attempts is the total number of tries, the first included.
	Attempts int
	// BaseDelay is the sleep before the first retry; it doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps the per-retry sleep.
	MaxDelay time.Duration
	// OnRetry, when set, observes each retry before its sleep.
	OnRetry func(attempt int, err error)
}

const (
	defaultAttempts  = 3
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 30 * time.Second
)

func (p Policy) attempts() int {
	if p.Attempts > 0 {
		return p.Attempts
	}
	return defaultAttempts
}

// delay returns the sleep before retry n (1-based), doubled per retry,
// capped, with 25% jitter so synchronized callers spread out.
func (p Policy) delay(n int) time.Duration {
	base, cap := p.BaseDelay, p.MaxDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	if cap <= 0 {
		cap = defaultMaxDelay
	}

	d := base << (n - 1)
	if d > cap || d <= 0 {
		d = cap
	}
	jitter := time.Duration((rand.Float64()*0.5 - 0.25) * float64(d))
	return d + jitter
}

// DoVal runs fn until it succeeds, fails non-transiently, the policy is
// exhausted, or ctx ends. The last error is returned unwrapped so callers
// keep their own error chains.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == p.attempts() {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// RetryLogger is an OnRetry hook that logs each retry through the global
// logger.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}
