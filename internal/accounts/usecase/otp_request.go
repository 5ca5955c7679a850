package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
)

const msgCooldown = "You have to wait %d seconds before you can request again."

func cooldownError(seconds int) error {
	return goerror.NewBusiness(fmt.Sprintf(msgCooldown, seconds), goerror.CodeTooManyRequest)
}

// RemainingSeconds is the whole number of seconds req stays usable at now.
func RemainingSeconds(req entity.OTPRequest, settings entity.OTPSettings, now time.Time) int {
	return req.RemainingSeconds(now, settings.Validity())
}

// CanRequest reports whether phone may receive a new code. When it may not,
// cooldown is the remaining lifetime of the code it already has.
func (s *Usecase) CanRequest(ctx context.Context, phoneNumber string) (allowed bool, cooldown int, err error) {
	ctx, span := s.startSpan(ctx, "CanRequest")
	defer span.End()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return false, 0, err
	}

	return s.canRequest(ctx, phoneNumber, *settings)
}

func (s *Usecase) canRequest(ctx context.Context, phoneNumber string, settings entity.OTPSettings) (bool, int, error) {
	now := s.clock.Now()

	req, err := s.repoDB.GetUsableOTPRequestByPhone(ctx, phoneNumber, now.Add(-settings.Validity()))
	if errors.Is(err, goerror.ErrNotFound) {
		return true, 0, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get usable otp request", "phone_number", phone.Mask(phoneNumber), "error", err)
		return false, 0, goerror.NewServer(err)
	}

	return false, RemainingSeconds(*req, settings, now), nil
}

// CreateRequest stores a fresh code for phone and hands it to delivery.
// It does not consult the cooldown on its own, but two callers racing for
// the same phone cannot both succeed: the loser gets the cooldown error.
func (s *Usecase) CreateRequest(ctx context.Context, phoneNumber string) (*entity.OTPRequest, error) {
	ctx, span := s.startSpan(ctx, "CreateRequest")
	defer span.End()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	return s.createRequest(ctx, phoneNumber, *settings)
}

func (s *Usecase) createRequest(ctx context.Context, phoneNumber string, settings entity.OTPSettings) (*entity.OTPRequest, error) {
	code, err := s.otp.Generate(settings.CodeType, settings.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "code_type", settings.CodeType, "code_length", settings.CodeLength, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	req := entity.OTPRequest{
		ID:          s.uid.Generate(),
		UUID:        s.uuid.Generate(),
		PhoneNumber: phoneNumber,
		Code:        code,
		SentAt:      now,
	}

	err = s.repoDB.CreateOTPRequestIfIdle(ctx, req, now.Add(-settings.Validity()))
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "otp request lost the race to a concurrent request", "phone_number", phone.Mask(phoneNumber))
		_, cooldown, err := s.canRequest(ctx, phoneNumber, settings)
		if err != nil {
			return nil, err
		}
		return nil, cooldownError(cooldown)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp request", "phone_number", phone.Mask(phoneNumber), "error", err)
		return nil, goerror.NewServer(err)
	}

	s.countOTPRequest(ctx)

	if err := s.repoMessaging.PublishOTPRequested(ctx, OTPRequestedEvent{
		OTPID:       req.ID,
		OTPUUID:     req.UUID,
		PhoneNumber: req.PhoneNumber,
		Code:        req.Code,
		SentAt:      req.SentAt,
		ExpiresIn:   settings.CodeValiditySeconds,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp requested", "otp_id", req.ID, "error", err)
	}

	return &req, nil
}
