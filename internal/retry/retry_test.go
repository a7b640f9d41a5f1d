package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-tss-network/randcast-node/internal/retry"
)

func TestBounded_SucceedsWithinBudget(t *testing.T) {
	attempts := 0
	err := retry.Bounded(context.Background(), time.Millisecond, 3, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestBounded_ExhaustsMaxAttempts(t *testing.T) {
	attempts := 0
	notified := 0
	err := retry.Bounded(context.Background(), time.Millisecond, 3, func() error {
		attempts++
		return errors.New("persistent failure")
	}, func(err error, attempt int) {
		notified++
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.NotZero(t, notified)
}

func TestUnbounded_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := retry.Unbounded(context.Background(), time.Millisecond, func() error {
		attempts++
		if attempts < 5 {
			return errors.New("still failing")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
}

func TestUnbounded_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := retry.Unbounded(ctx, time.Millisecond, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("never succeeds")
	}, nil)

	require.Error(t, err)
	assert.GreaterOrEqual(t, attempts, 2)
}
