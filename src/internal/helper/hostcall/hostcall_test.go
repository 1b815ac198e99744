// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hostcall_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/hostcall"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns result", func(t *testing.T) {
		got, err := hostcall.Do(ctx, time.Second, "lookup", func(context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("Returns error", func(t *testing.T) {
		_, err := hostcall.Do(ctx, time.Second, "lookup", func(context.Context) (int, error) {
			return 0, errors.New("access denied")
		})
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("Abandons hung call", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		start := time.Now()
		err := hostcall.Run(ctx, 20*time.Millisecond, "registry open", func(context.Context) error {
			<-release
			return nil
		})
		assert.ErrorIs(t, err, hostcall.ErrTimeout)
		assert.ErrorContains(t, err, "registry open")
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Parent cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		release := make(chan struct{})
		defer close(release)

		err := hostcall.Run(cctx, time.Minute, "store flush", func(context.Context) error {
			<-release
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("No timeout", func(t *testing.T) {
		err := hostcall.Run(ctx, 0, "noop", func(ctx context.Context) error {
			_, has := ctx.Deadline()
			assert.False(t, has)
			return nil
		})
		assert.NoError(t, err)
	})
}
