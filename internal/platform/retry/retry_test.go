package retry_test

import (
	"context"
	"errors"
	"reactledger/internal/platform/retry"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   1 * time.Millisecond,
	RateLimitBackoff: 5 * time.Millisecond,
}

func alwaysRetry(error) retry.Action { return retry.Retry }
func alwaysStop(error) retry.Action  { return retry.Stop }
func alwaysAfter(error) retry.Action { return retry.After }

// failing returns an operation that counts its calls and always fails with err.
func failing(calls *int, err error) retry.Operation[struct{}] {
	return func() (struct{}, error) {
		*calls++
		return struct{}{}, err
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	val, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysStop, failing(&calls, permanent))

	var permErr *retry.PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("transient")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, failing(&calls, transient))
	assert.ErrorIs(t, err, transient)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), retry.Policy{}, alwaysRetry, failing(&calls, errors.New("transient")))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RateLimitUsesLongerBackoff(t *testing.T) {
	var waits []time.Duration
	p := fastPolicy
	p.OnRetry = func(_ int, _ error, backoff time.Duration) { waits = append(waits, backoff) }

	calls := 0
	_, _ = retry.Do(context.Background(), p, alwaysAfter, failing(&calls, errors.New("429")))
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, waits)
}

func TestDo_BackoffDoubles(t *testing.T) {
	var waits []time.Duration
	p := fastPolicy
	p.MaxAttempts = 4
	p.OnRetry = func(_ int, _ error, backoff time.Duration) { waits = append(waits, backoff) }

	calls := 0
	_, _ = retry.Do(context.Background(), p, alwaysRetry, failing(&calls, errors.New("503")))
	assert.Equal(t, []time.Duration{1 * time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, waits)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{MaxAttempts: 5, InitialBackoff: time.Hour}
	p.OnRetry = func(int, error, time.Duration) { cancel() }

	calls := 0
	_, err := retry.Do(ctx, p, alwaysRetry, failing(&calls, errors.New("transient")))
	assert.ErrorIs(t, err, context.Canceled)
}
