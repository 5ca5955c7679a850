package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/storefront/internal/notification/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/idempotency"
	"github.com/shandysiswandi/storefront/internal/pkg/sms"
	"github.com/shandysiswandi/storefront/internal/pkg/valueobject"
)

const (
	defaultOTPTemplate    = "Your login code is {{.code}}. It expires in {{.minutes}} minutes."
	defaultMaxAttempts    = 4
	defaultRetryBase      = 250 * time.Millisecond
	minIdempotencyWindow  = time.Minute
	idempotencyKeyPrefix  = "notification:otp_sms:"
	deliveryKindLoginCode = "login_otp"
)

type SendOTPSMSInput struct {
	OTPID       int64  `validate:"required,gt=0"`
	OTPUUID     string `validate:"required,uuid"`
	PhoneNumber string `validate:"required,phone_e164"`
	Code        string `validate:"required"`
	SentAt      int64  `validate:"required,gt=0"`
	ExpiresIn   int    `validate:"required,gt=0"`
}

func (in SendOTPSMSInput) expiresAt() time.Time {
	return time.Unix(in.SentAt, 0).Add(time.Duration(in.ExpiresIn) * time.Second)
}

// SendOTPSMS delivers a login code at most once per otp request. Codes that
// expired while queued are dropped. Malformed input and permanent provider
// failures are logged and acknowledged; anything else is returned so the
// broker redelivers.
func (s *Usecase) SendOTPSMS(ctx context.Context, in SendOTPSMSInput) error {
	ctx, span := s.startSpan(ctx, "SendOTPSMS")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "otp_uuid", in.OTPUUID, "error", err)
		return nil
	}

	now := s.clock.Now()
	expiresAt := in.expiresAt()
	if !now.Before(expiresAt) {
		slog.WarnContext(ctx, "skip sending expired otp", "otp_uuid", in.OTPUUID, "expired_at", expiresAt)
		return nil
	}

	left := expiresAt.Sub(now)
	body, err := s.renderOTPBody(in, left)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp sms body", "otp_uuid", in.OTPUUID, "error", err)
		return nil
	}

	window := max(left, minIdempotencyWindow)
	err = s.idempotency.Exec(ctx, idempotencyKeyPrefix+in.OTPUUID, func(ctx context.Context) error {
		return s.deliverOTPSMS(ctx, in, body, left)
	},
		idempotency.WithLockDuration(window),
		idempotency.WithStateTTL(window),
		idempotency.WithRetryFailed(),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "otp sms already handled", "otp_uuid", in.OTPUUID, "state", err.Error())
		return nil
	case errors.Is(err, sms.ErrPermanent), errors.Is(err, context.DeadlineExceeded):
		slog.ErrorContext(ctx, "failed to send otp sms, giving up", "otp_uuid", in.OTPUUID, "error", err)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to send otp sms", "otp_uuid", in.OTPUUID, "error", err)
		return err
	}
}

func (s *Usecase) renderOTPBody(in SendOTPSMSInput, left time.Duration) (string, error) {
	tpl := s.cfg.GetString("modules.notification.sms.otp_template")
	if tpl == "" {
		tpl = defaultOTPTemplate
	}

	minutes := int((left + time.Minute - 1) / time.Minute)
	return s.renderTemplate("otp_sms", tpl, map[string]any{
		"code":    in.Code,
		"seconds": int(left.Seconds()),
		"minutes": minutes,
	})
}

func (s *Usecase) retryBackoff() retry.Backoff {
	attempts := s.cfg.GetInt("modules.notification.sms.max_attempts")
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := time.Duration(s.cfg.GetInt("modules.notification.sms.retry_base_millis")) * time.Millisecond
	if base <= 0 {
		base = defaultRetryBase
	}

	return retry.WithMaxRetries(uint64(attempts-1), retry.WithCappedDuration(5*time.Second, retry.NewExponential(base)))
}

func (s *Usecase) deliverOTPSMS(ctx context.Context, in SendOTPSMSInput, body string, left time.Duration) error {
	d, err := s.repoDB.EnsureSMSDelivery(ctx, entity.CreateSMSDelivery{
		ID:          s.uid.Generate(),
		Reference:   in.OTPUUID,
		PhoneNumber: in.PhoneNumber,
		Provider:    s.repoSMS.Provider(),
		Metadata:    valueobject.JSONMap{"kind": deliveryKindLoginCode, "otp_id": in.OTPID},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo ensure sms delivery", "otp_uuid", in.OTPUUID, "error", err)
		return err
	}
	if d.Status == entity.DeliveryStatusSent {
		return nil
	}

	// a code is worthless after it expires, so retries stop there
	sendCtx, cancel := context.WithTimeout(ctx, left)
	defer cancel()

	attempts := d.Attempts
	var messageID string
	sendErr := retry.Do(sendCtx, s.retryBackoff(), func(ctx context.Context) error {
		attempts++
		id, err := s.repoSMS.Send(ctx, sms.Message{To: in.PhoneNumber, Body: body, Reference: in.OTPUUID})
		if err == nil {
			messageID = id
			return nil
		}
		if errors.Is(err, sms.ErrPermanent) {
			return err
		}
		slog.WarnContext(ctx, "failed to send otp sms, retrying", "otp_uuid", in.OTPUUID, "attempt", attempts, "error", err)
		return retry.RetryableError(err)
	})

	up := entity.UpdateSMSDelivery{ID: d.ID, Attempts: attempts, Status: entity.DeliveryStatusSent, ProviderMessageID: messageID}
	if sendErr != nil {
		up.Status = entity.DeliveryStatusFailed
		up.LastError = sendErr.Error()
	}
	if err := s.repoDB.UpdateSMSDelivery(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update sms delivery", "delivery_id", d.ID, "status", up.Status.String(), "error", err)
	}

	return sendErr
}
