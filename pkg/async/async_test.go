package async_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/linerelay/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()
		f := async.Async(context.Background(), 42, func(_ context.Context, n int) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return fmt.Sprintf("Number: %d", n), nil
		})

		res, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, "Number: 42", res)
		assert.True(t, f.IsComplete())
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Async(context.Background(), "x", func(context.Context, string) (int, error) {
			return 0, boom
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("pre-cancelled context skips the function", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		f := async.Async(ctx, 1, func(context.Context, int) (int, error) {
			called = true
			return 1, nil
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("cancellation reaches the function", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		f := async.Async(ctx, struct{}{}, func(ctx context.Context, _ struct{}) (struct{}, error) {
			<-ctx.Done()
			return struct{}{}, ctx.Err()
		})

		assert.False(t, f.IsComplete())
		cancel()

		select {
		case <-f.Done():
		case <-time.After(time.Second):
			t.Fatal("future did not complete after cancel")
		}
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("recovers panics", func(t *testing.T) {
		t.Parallel()
		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			panic("kaboom")
		})

		res, err := f.Await()
		require.ErrorIs(t, err, async.ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Zero(t, res)
	})
}
