package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestStateTracker_Exec(t *testing.T) {
	ctx := context.Background()

	t.Run("RunsOnce", func(t *testing.T) {
		// Arrange
		tr, _ := newTracker(t)
		calls := 0
		fn := func(context.Context) error { calls++; return nil }

		// Act
		err1 := tr.Exec(ctx, "otp:1", fn)
		err2 := tr.Exec(ctx, "otp:1", fn)

		// Assert
		assert.NoError(t, err1)
		assert.ErrorIs(t, err2, ErrAlreadyCompleted)
		assert.Equal(t, 1, calls)
	})

	t.Run("FailedIsSticky", func(t *testing.T) {
		tr, _ := newTracker(t)
		boom := errors.New("boom")

		assert.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return boom }), boom)
		assert.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }), ErrAlreadyFailed)
	})

	t.Run("RetryFailed", func(t *testing.T) {
		tr, _ := newTracker(t)
		boom := errors.New("boom")

		require.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return boom }), boom)
		assert.NoError(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }, WithRetryFailed()))
		assert.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }, WithRetryFailed()), ErrAlreadyCompleted)
	})

	t.Run("InProgress", func(t *testing.T) {
		tr, _ := newTracker(t)
		state, err := tr.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.Equal(t, StateNone, state)

		assert.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }), ErrAlreadyInProgress)
	})

	t.Run("StateExpires", func(t *testing.T) {
		tr, mr := newTracker(t)
		require.NoError(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }, WithStateTTL(time.Second)))

		mr.FastForward(2 * time.Second)

		assert.NoError(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }))
	})

	t.Run("CorruptState", func(t *testing.T) {
		tr, mr := newTracker(t)
		require.NoError(t, mr.Set("idempotency:k", "weird"))

		assert.ErrorIs(t, tr.Exec(ctx, "k", func(context.Context) error { return nil }), ErrInvalidState)
	})
}
