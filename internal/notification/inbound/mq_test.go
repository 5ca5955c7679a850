package inbound

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/storefront/internal/notification/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUUID string

func (f fixedUUID) Generate() string { return string(f) }

type fakeUC struct {
	mu  sync.Mutex
	got []usecase.SendOTPSMSInput
	cID []string
	err error
}

func (f *fakeUC) SendOTPSMS(ctx context.Context, in usecase.SendOTPSMSInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, in)
	f.cID = append(f.cID, instrument.GetCorrelationID(ctx))
	return f.err
}

func (f *fakeUC) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func otpRequestedBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(event.OTPRequestedMessage{
		OTPID:       1001,
		OTPUUID:     "0195a3c2-7a10-7c3e-9d1b-2f4a5b6c7d8e",
		PhoneNumber: "+989123456789",
		Code:        "48213",
		SentAt:      1772355600,
		ExpiresIn:   180,
	})
	require.NoError(t, err)
	return body
}

func TestMQHandler_OTPRequestedNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{}
		h := &MQHandler{uc: uc, uuid: fixedUUID("cid-new"), ins: instrument.NewNoop()}
		d := messaging.Delivery{
			Topic:   event.OTPRequestedDestination,
			Body:    otpRequestedBody(t),
			Headers: map[string]string{keyOfCorrelationID: "cid-1"},
			Attempt: 1,
		}

		// Act
		err := h.OTPRequestedNotification(ctx, d)

		// Assert
		require.NoError(t, err)
		require.Len(t, uc.got, 1)
		assert.Equal(t, usecase.SendOTPSMSInput{
			OTPID:       1001,
			OTPUUID:     "0195a3c2-7a10-7c3e-9d1b-2f4a5b6c7d8e",
			PhoneNumber: "+989123456789",
			Code:        "48213",
			SentAt:      1772355600,
			ExpiresIn:   180,
		}, uc.got[0])
		assert.Equal(t, "cid-1", uc.cID[0])
	})

	t.Run("MissingCorrelationIDIsGenerated", func(t *testing.T) {
		uc := &fakeUC{}
		h := &MQHandler{uc: uc, uuid: fixedUUID("cid-new"), ins: instrument.NewNoop()}

		err := h.OTPRequestedNotification(ctx, messaging.Delivery{Body: otpRequestedBody(t)})

		require.NoError(t, err)
		assert.Equal(t, "cid-new", uc.cID[0])
	})

	t.Run("MalformedBodyIsAcknowledged", func(t *testing.T) {
		uc := &fakeUC{}
		h := &MQHandler{uc: uc, uuid: fixedUUID("cid-new"), ins: instrument.NewNoop()}

		err := h.OTPRequestedNotification(ctx, messaging.Delivery{Body: []byte("{not json")})

		require.NoError(t, err)
		assert.Zero(t, uc.count())
	})

	t.Run("UsecaseErrorIsReturned", func(t *testing.T) {
		uc := &fakeUC{err: assert.AnError}
		h := &MQHandler{uc: uc, uuid: fixedUUID("cid-new"), ins: instrument.NewNoop()}

		err := h.OTPRequestedNotification(ctx, messaging.Delivery{Body: otpRequestedBody(t)})

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRegisterMQConsumer(t *testing.T) {
	t.Run("EnabledConsumerReceives", func(t *testing.T) {
		// Arrange
		cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  notification:
    consumer_names: [accounts_otp_requested_notification]
    consumer_workers: 1
`))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		broker := messaging.NewMemory()
		routine := goroutine.NewManager(1)
		uc := &fakeUC{}
		t.Cleanup(func() {
			cancel()
			_ = broker.Close()
			_ = routine.Wait()
		})

		body := otpRequestedBody(t)

		// Act
		RegisterMQConsumer(ctx, cfg, routine, broker, fixedUUID("cid-new"), uc, instrument.NewNoop())

		// Assert
		require.Eventually(t, func() bool {
			_ = broker.Publish(ctx, event.OTPRequestedDestination, messaging.Envelope{Body: body})
			return uc.count() > 0
		}, 2*time.Second, 20*time.Millisecond)
		assert.False(t, routine.Go(ctx, func(context.Context) error { return nil }), "consumer should hold the only slot")
	})

	t.Run("DisabledConsumerIsSkipped", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  notification:
    consumer_names: []
`))
		require.NoError(t, err)
		routine := goroutine.NewManager(1)
		ctx := context.Background()

		RegisterMQConsumer(ctx, cfg, routine, messaging.NewMemory(), fixedUUID("cid-new"), &fakeUC{}, instrument.NewNoop())

		assert.True(t, routine.Go(ctx, func(context.Context) error { return nil }))
		require.NoError(t, routine.Wait())
	})
}
