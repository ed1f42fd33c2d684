package utils

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("timeout")

// Clock calls process right away and then once per interval until it
// succeeds. It returns ErrTimeout when ctx passes its deadline, or ctx.Err()
// when ctx is cancelled.
func Clock(ctx context.Context, interval time.Duration, process func() error) error {
	if err := process(); err == nil {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-ticker.C:
			if err := process(); err == nil {
				return nil
			}
		}
	}
}
