package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoValFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), Policy{}, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestDoValRetriesTransient(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(errors.New("throttled"), 429)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoValExhaustsPolicy(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		calls++
		return 42, NewTransientError(errors.New("down"), 503)
	})
	require.Error(t, err)
	assert.Zero(t, val, "failed calls return the zero value")
	assert.Equal(t, 3, calls)
}

func TestDoValFatalErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastPolicy(10), func(context.Context) (int, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0, NewTransientError(errors.New("down"), 503)
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 3)
}

func TestDoValOnRetryObservesEachRetry(t *testing.T) {
	var attempts []int
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	_, err := DoVal(context.Background(), p, func(context.Context) (int, error) {
		return 0, NewTransientError(errors.New("down"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts, "two retries between three attempts")
}

func TestDelayDoublesAndCaps(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	// Jitter is 25% at most, so the doubling ladder stays ordered
	// and everything obeys the cap with its jitter allowance.
	for n := 1; n <= 8; n++ {
		d := p.delay(n)
		assert.LessOrEqual(t, d, time.Second+250*time.Millisecond, "retry %d", n)
		assert.Positive(t, d)
	}
	assert.GreaterOrEqual(t, p.delay(3), 300*time.Millisecond)
	assert.Less(t, p.delay(1), 130*time.Millisecond)
}

func TestRetryLoggerDoesNotPanic(t *testing.T) {
	RetryLogger("msgraph", "list messages")(1, errors.New("down"))
}
