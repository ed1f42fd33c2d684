package utils

import (
	"context"
	"errors"
	"time"
)

// Outcome is the result of an operation run under a deadline. A timeout is
// not an error: TimedOut is set, Value is the zero value and Err is nil.
type Outcome[T any] struct {
	Value    T
	TimedOut bool
	err      error
}

// Err returns the error of an operation that finished in time.
func (o Outcome[T]) Err() error {
	return o.err
}

// WithTimeout runs op and abandons it once timeout has passed. op receives a
// context that is cancelled at that point and should stop its work.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) Outcome[T] {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) &&
			(errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, ErrTimeout)) {
			return Outcome[T]{TimedOut: true}
		}
		return Outcome[T]{Value: r.value, err: r.err}
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome[T]{err: ctx.Err()}
		}
		return Outcome[T]{TimedOut: true}
	}
}
