// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package hostcall bounds synchronous calls into host services with a timeout.
package hostcall

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout indicates that a host service did not answer in time.
var ErrTimeout = errors.New("hostcall: host service timed out")

// Do runs fn with a context that expires after timeout and returns its
// result. A non-positive timeout only inherits ctx's deadline.
//
// Host APIs such as CryptoAPI and the registry ignore cancellation, so fn runs
// on its own goroutine and Do stops waiting when the deadline passes. A hung
// call is abandoned, not interrupted; its eventual result is discarded.
func Do[T any](ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		val, err := fn(ctx)
		done <- result{val, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w: %s", ErrTimeout, op)
		}
		return zero, ctx.Err()
	}
}

// Run is [Do] for calls without a result.
func Run(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, timeout, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
