package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/storefront/internal/notification/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, d messaging.Delivery) context.Context {
	if cID := d.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPRequestedNotification sends the code of a new otp request by SMS.
// The code never reaches the log; only the request identifiers do.
func (h *MQHandler) OTPRequestedNotification(ctx context.Context, d messaging.Delivery) error {
	ctx = h.ensureCorrelationID(ctx, d)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPRequestedNotification")
	defer span.End()

	var payload event.OTPRequestedMessage
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp requested notification", "topic", d.Topic, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: otp requested notification",
		"otp_id", payload.OTPID, "otp_uuid", payload.OTPUUID, "attempt", d.Attempt)

	if err := h.uc.SendOTPSMS(ctx, usecase.SendOTPSMSInput{
		OTPID:       payload.OTPID,
		OTPUUID:     payload.OTPUUID,
		PhoneNumber: payload.PhoneNumber,
		Code:        payload.Code,
		SentAt:      payload.SentAt,
		ExpiresIn:   payload.ExpiresIn,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp requested", "otp_uuid", payload.OTPUUID, "error", err)
		return err
	}

	return nil
}
