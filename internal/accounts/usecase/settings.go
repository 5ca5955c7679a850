package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
)

const (
	settingsObject = "accounts.otp_settings"
	actRead        = "read"
	actWrite       = "write"
)

type SettingsInput struct {
	CodeType            string `validate:"required,otp_code_type"`
	CodeLength          int    `validate:"required,min=4,max=8"`
	CodeValiditySeconds int    `validate:"required,gt=0"`
	CaseSensitive       bool
}

func (in SettingsInput) toEntity() entity.OTPSettings {
	return entity.OTPSettings{
		CodeType:            otp.CodeType(in.CodeType),
		CodeLength:          in.CodeLength,
		CodeValiditySeconds: in.CodeValiditySeconds,
		CaseSensitive:       in.CaseSensitive,
	}
}

func (s *Usecase) GetSettings(ctx context.Context) (*entity.OTPSettings, error) {
	ctx, span := s.startSpan(ctx, "GetSettings")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, settingsObject, actRead); err != nil {
		return nil, err
	}

	return s.loadSettings(ctx)
}

// CreateSettings adds the settings row. Only one row may ever exist.
func (s *Usecase) CreateSettings(ctx context.Context, in SettingsInput) (*entity.OTPSettings, error) {
	ctx, span := s.startSpan(ctx, "CreateSettings")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, settingsObject, actWrite)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	st := in.toEntity()
	st.UpdatedAt = s.clock.Now()

	err = s.repoDB.CreateOTPSettings(ctx, st)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("settings already exist", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp settings", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp settings created", "user_id", clm.UserID)

	return &st, nil
}

func (s *Usecase) UpdateSettings(ctx context.Context, in SettingsInput) (*entity.OTPSettings, error) {
	ctx, span := s.startSpan(ctx, "UpdateSettings")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, settingsObject, actWrite)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	st := in.toEntity()
	st.UpdatedAt = s.clock.Now()

	err = s.repoDB.UpdateOTPSettings(ctx, st)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("settings not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update otp settings", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp settings updated", "user_id", clm.UserID,
		"code_type", st.CodeType, "code_length", st.CodeLength, "code_validity_seconds", st.CodeValiditySeconds)

	return &st, nil
}

// DeleteSettings always refuses; the OTP subsystem cannot run without the row.
func (s *Usecase) DeleteSettings(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "DeleteSettings")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, settingsObject, actWrite); err != nil {
		return err
	}

	return goerror.NewBusiness("settings can not be deleted", goerror.CodeForbidden)
}
