package sms

import (
	"context"
	"testing"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	got sms.Message
	err error
}

func (*stubSender) Name() string { return "stub" }

func (s *stubSender) Send(_ context.Context, msg sms.Message) (string, error) {
	s.got = msg
	if s.err != nil {
		return "", s.err
	}
	return "id-1", nil
}

func TestSMS_Send(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		client := &stubSender{}
		m := New(client, instrument.NewNoop())

		// Act
		id, err := m.Send(context.Background(), sms.Message{To: "+989123456789", Body: "code 48213"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "id-1", id)
		assert.Equal(t, "stub", m.Provider())
		assert.Equal(t, "+989123456789", client.got.To)
	})

	t.Run("Error", func(t *testing.T) {
		m := New(&stubSender{err: sms.ErrPermanent}, instrument.NewNoop())

		_, err := m.Send(context.Background(), sms.Message{To: "+989123456789"})

		assert.ErrorIs(t, err, sms.ErrPermanent)
	})
}
