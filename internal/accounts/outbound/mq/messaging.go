package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/storefront/internal/accounts/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Broker
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Broker, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishOTPRequested keys the message by phone number so brokers that
// partition keep one phone's codes in order.
func (m *Messaging) PublishOTPRequested(ctx context.Context, msg usecase.OTPRequestedEvent) error {
	ctx, span := m.ins.Tracer("accounts.outbound.mq").Start(ctx, "PublishOTPRequested")
	defer span.End()

	body, err := json.Marshal(event.OTPRequestedMessage{
		OTPID:       msg.OTPID,
		OTPUUID:     msg.OTPUUID,
		PhoneNumber: msg.PhoneNumber,
		Code:        msg.Code,
		SentAt:      msg.SentAt.Unix(),
		ExpiresIn:   msg.ExpiresIn,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, event.OTPRequestedDestination, messaging.Envelope{
		Key:     []byte(msg.PhoneNumber),
		Body:    body,
		Headers: map[string]string{keyOfCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
