package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
)

// Credentials is the proof submitted to a backend. A phone login carries
// exactly one of OTPID and OTPUUID plus Code; an email login carries Email
// and Password.
type Credentials struct {
	OTPID    int64
	OTPUUID  string
	Code     string
	Email    string
	Password string
}

// Backend verifies one kind of credentials. Authenticate returns
// entity.ErrCredentialsInvalid for every expected failure; any other error
// is already a goerror server error.
type Backend interface {
	Name() string
	// Method is the jwt amr value recorded for tokens issued through it.
	Method() string
	Supports(c Credentials) bool
	Authenticate(ctx context.Context, c Credentials) (*entity.User, error)
}

// authenticate hands c to the first backend that supports it.
func (s *Usecase) authenticate(ctx context.Context, c Credentials) (*entity.User, error) {
	b := s.backendFor(c)
	if b == nil {
		s.countLoginAttempt(ctx, "none", "invalid")
		return nil, entity.ErrCredentialsInvalid
	}

	user, err := b.Authenticate(ctx, c)
	switch {
	case err == nil:
		s.countLoginAttempt(ctx, b.Name(), "success")
	case errors.Is(err, entity.ErrCredentialsInvalid):
		s.countLoginAttempt(ctx, b.Name(), "invalid")
	default:
		s.countLoginAttempt(ctx, b.Name(), "error")
	}
	return user, err
}

func (s *Usecase) backendFor(c Credentials) Backend {
	for _, b := range s.backends {
		if b.Supports(c) {
			return b
		}
	}
	return nil
}

// PhoneOTPBackend accepts a code sent to a phone number. A matching code
// is consumed and the phone's user is created on first login.
type PhoneOTPBackend struct {
	s *Usecase
}

func (*PhoneOTPBackend) Name() string { return "phone_otp" }

func (*PhoneOTPBackend) Method() string { return jwt.MethodOTP }

func (*PhoneOTPBackend) Supports(c Credentials) bool {
	return c.OTPID > 0 || c.OTPUUID != ""
}

func (b *PhoneOTPBackend) Authenticate(ctx context.Context, c Credentials) (*entity.User, error) {
	ctx, span := b.s.startSpan(ctx, "PhoneOTPBackend.Authenticate")
	defer span.End()

	if c.Code == "" || (c.OTPID > 0) == (c.OTPUUID != "") {
		return nil, entity.ErrCredentialsInvalid
	}
	if c.OTPUUID != "" && !uid.IsUUID(c.OTPUUID) {
		return nil, entity.ErrCredentialsInvalid
	}

	settings, err := b.s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	since := b.s.clock.Now().Add(-settings.Validity())

	var req *entity.OTPRequest
	if c.OTPID > 0 {
		req, err = b.s.repoDB.GetUsableOTPRequestByID(ctx, c.OTPID, since)
	} else {
		req, err = b.s.repoDB.GetUsableOTPRequestByUUID(ctx, c.OTPUUID, since)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp request not usable", "otp_id", c.OTPID, "otp_uuid", c.OTPUUID)
		return nil, entity.ErrCredentialsInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp request", "otp_id", c.OTPID, "otp_uuid", c.OTPUUID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !otp.Equal(req.Code, c.Code, settings.CaseSensitive) {
		slog.WarnContext(ctx, "otp code mismatch", "otp_id", req.ID)
		return nil, entity.ErrCredentialsInvalid
	}

	// The code is spent before the account status is known, so a refused
	// account also frees its phone's cooldown.
	consumed, err := b.s.repoDB.ConsumeOTPRequest(ctx, req.ID, since)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp request", "otp_id", req.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "otp request consumed concurrently", "otp_id", req.ID)
		return nil, entity.ErrCredentialsInvalid
	}

	user, err := b.s.GetOrCreateByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if !user.CanAuthenticate() {
		slog.WarnContext(ctx, "user account can not authenticate", "user_id", user.ID, "status", user.Status.String(),
			"phone_number", phone.Mask(req.PhoneNumber))
		return nil, entity.ErrCredentialsInvalid
	}

	return user, nil
}

// EmailPasswordBackend checks a password against an existing account.
// It never creates users.
type EmailPasswordBackend struct {
	s *Usecase
}

func (*EmailPasswordBackend) Name() string { return "email_password" }

func (*EmailPasswordBackend) Method() string { return jwt.MethodPassword }

func (*EmailPasswordBackend) Supports(c Credentials) bool {
	return c.Email != ""
}

func (b *EmailPasswordBackend) Authenticate(ctx context.Context, c Credentials) (*entity.User, error) {
	ctx, span := b.s.startSpan(ctx, "EmailPasswordBackend.Authenticate")
	defer span.End()

	if c.Email == "" || c.Password == "" {
		return nil, entity.ErrCredentialsInvalid
	}

	user, err := b.s.repoDB.GetUserByEmail(ctx, c.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", c.Email)
		return nil, entity.ErrCredentialsInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", c.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Password == "" || !b.s.password.Verify(user.Password, c.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, entity.ErrCredentialsInvalid
	}

	if !user.CanAuthenticate() {
		slog.WarnContext(ctx, "user account can not authenticate", "user_id", user.ID, "status", user.Status.String())
		return nil, entity.ErrCredentialsInvalid
	}

	return user, nil
}
