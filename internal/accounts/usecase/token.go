package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
)

type RequestOTPInput struct {
	PhoneNumber string `validate:"required"`
}

type RequestOTPOutput struct {
	OTPUUID         string
	CooldownSeconds int
}

// RequestOTP sends a code for API clients that hold no session. The caller
// gets the request uuid to pair with the code, never the code itself.
func (s *Usecase) RequestOTP(ctx context.Context, in RequestOTPInput) (*RequestOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "RequestOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phoneNumber, err := s.phone.Parse(in.PhoneNumber)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "phone_number", "Please Enter a valid phone number.")
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	allowed, cooldown, err := s.canRequest(ctx, phoneNumber, *settings)
	if err != nil {
		return nil, err
	}
	if !allowed {
		slog.InfoContext(ctx, "otp request refused by cooldown", "phone_number", phone.Mask(phoneNumber), "cooldown", cooldown)
		return nil, cooldownError(cooldown)
	}

	req, err := s.createRequest(ctx, phoneNumber, *settings)
	if err != nil {
		return nil, err
	}

	return &RequestOTPOutput{
		OTPUUID:         req.UUID,
		CooldownSeconds: RemainingSeconds(*req, *settings, s.clock.Now()),
	}, nil
}

type IssueTokenInput struct {
	OTPUUID  string
	Code     string
	Email    string
	Password string
}

type IssueTokenOutput struct {
	AccessToken string
	TokenType   string
	UserID      int64
}

// IssueToken exchanges phone or email credentials for a bearer token.
func (s *Usecase) IssueToken(ctx context.Context, in IssueTokenInput) (*IssueTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "IssueToken")
	defer span.End()

	creds := Credentials{
		OTPUUID:  strings.TrimSpace(in.OTPUUID),
		Code:     strings.TrimSpace(in.Code),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
	user, err := s.authenticate(ctx, creds)
	if errors.Is(err, entity.ErrCredentialsInvalid) {
		return nil, goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(jwt.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Method:   s.backendFor(creds).Method(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &IssueTokenOutput{AccessToken: token, TokenType: "Bearer", UserID: user.ID}, nil
}
