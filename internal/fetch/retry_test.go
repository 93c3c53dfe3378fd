package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "marketset/internal/errors"
)

func TestPolicyDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 3, Backoff: FixedBackoff(0)}

	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 3, Backoff: FixedBackoff(time.Millisecond)}

	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return apperrors.NewNetworkError("transient", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 2, Backoff: FixedBackoff(0)}

	err := policy.Do(context.Background(), func() error {
		calls++
		return apperrors.NewNetworkError("still down", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
}

func TestPolicyDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := Policy{MaxAttempts: 5, Backoff: FixedBackoff(time.Minute)}

	err := policy.Do(ctx, func() error {
		calls++
		cancel()
		return apperrors.NewNetworkError("transient", nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	policy := Policy{}

	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(100 * time.Millisecond)

	assert.Equal(t, 100*time.Millisecond, backoff(1))
	assert.Equal(t, 200*time.Millisecond, backoff(2))
	assert.Equal(t, 400*time.Millisecond, backoff(3))
}
