package idempotency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestStateTracker_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container test skipped in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	tr := New(client)

	t.Run("ConcurrentExecRunsOnce", func(t *testing.T) {
		// Arrange
		var calls atomic.Int32
		var wg sync.WaitGroup
		errs := make([]error, 8)

		// Act
		for i := range errs {
			wg.Go(func() {
				errs[i] = tr.Exec(ctx, "otp_sms:race", func(context.Context) error {
					calls.Add(1)
					time.Sleep(50 * time.Millisecond)
					return nil
				})
			})
		}
		wg.Wait()

		// Assert
		assert.Equal(t, int32(1), calls.Load())
		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, ErrAlreadyInProgress) || errors.Is(err, ErrAlreadyCompleted), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("StateKeyExpires", func(t *testing.T) {
		// Arrange
		require.NoError(t, tr.Exec(ctx, "otp_sms:ttl", func(context.Context) error { return nil }, WithStateTTL(time.Second)))

		// Act
		time.Sleep(1500 * time.Millisecond)
		err := tr.Exec(ctx, "otp_sms:ttl", func(context.Context) error { return nil })

		// Assert
		assert.NoError(t, err)
	})
}
