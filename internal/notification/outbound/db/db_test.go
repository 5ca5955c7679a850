package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/storefront/internal/notification/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/migrate"
	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrate.Up(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop())
}

func TestDB_SMSDelivery(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	ref := "0195a3c2-7a10-7c3e-9d1b-2f4a5b6c7d8e"

	t.Run("EnsureCreates", func(t *testing.T) {
		// Act
		d, err := s.EnsureSMSDelivery(ctx, entity.CreateSMSDelivery{
			ID:          11,
			Reference:   ref,
			PhoneNumber: "+989123456789",
			Provider:    "log",
			Metadata:    valueobject.JSONMap{"kind": "login_otp", "otp_id": 1001},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(11), d.ID)
		assert.Equal(t, entity.DeliveryStatusQueued, d.Status)
		assert.Zero(t, d.Attempts)
		assert.Equal(t, "login_otp", d.Metadata.GetString("kind"))
		assert.Equal(t, int64(1001), d.Metadata.GetInt64("otp_id"))
	})

	t.Run("EnsureReturnsExistingRow", func(t *testing.T) {
		d, err := s.EnsureSMSDelivery(ctx, entity.CreateSMSDelivery{ID: 12, Reference: ref, PhoneNumber: "+989123456789", Provider: "log"})

		require.NoError(t, err)
		assert.Equal(t, int64(11), d.ID)
	})

	t.Run("Update", func(t *testing.T) {
		// Arrange
		up := entity.UpdateSMSDelivery{ID: 11, Status: entity.DeliveryStatusSent, Attempts: 2, ProviderMessageID: "log-2"}

		// Act
		err := s.UpdateSMSDelivery(ctx, up)

		// Assert
		require.NoError(t, err)
		d, err := s.EnsureSMSDelivery(ctx, entity.CreateSMSDelivery{ID: 13, Reference: ref, PhoneNumber: "+989123456789", Provider: "log"})
		require.NoError(t, err)
		assert.Equal(t, entity.DeliveryStatusSent, d.Status)
		assert.Equal(t, 2, d.Attempts)
		assert.Equal(t, "log-2", d.ProviderMessageID)
		assert.Empty(t, d.LastError)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.UpdateSMSDelivery(ctx, entity.UpdateSMSDelivery{ID: 999, Status: entity.DeliveryStatusFailed})

		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}
