package uow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// Retry runs fn until it stops reporting ErrVersionConflict, at most Attempts
// times, sleeping Backoff*attempt in between. Other errors return immediately.
func Retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = fn()
		if !errors.Is(last, ErrVersionConflict) {
			return last
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%w: %d attempts: %v", ErrConcurrentModification, attempts, last)
}
