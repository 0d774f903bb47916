package uow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_SucceedsAfterConflicts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("save loan: %w", ErrVersionConflict)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 2}, func() error {
		calls++
		return ErrVersionConflict
	})
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Equal(t, 2, calls)
}

func TestRetry_OtherErrorsReturnImmediately(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 5}, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryPolicy{Attempts: 5, Backoff: time.Second}, func() error {
		return ErrVersionConflict
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), RetryPolicy{}, func() error {
		calls++
		return nil
	})
	assert.Equal(t, 1, calls)
}
