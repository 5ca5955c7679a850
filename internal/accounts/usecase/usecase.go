package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type OTPRequestedEvent struct {
	OTPID       int64
	OTPUUID     string
	PhoneNumber string
	Code        string
	SentAt      time.Time
	ExpiresIn   int
}

type repoMessaging interface {
	PublishOTPRequested(ctx context.Context, msg OTPRequestedEvent) error
}

type repoDB interface {
	GetOTPSettings(ctx context.Context) (*entity.OTPSettings, error)
	CreateOTPSettings(ctx context.Context, st entity.OTPSettings) error
	UpdateOTPSettings(ctx context.Context, st entity.OTPSettings) error

	GetUsableOTPRequestByPhone(ctx context.Context, phone string, since time.Time) (*entity.OTPRequest, error)
	GetUsableOTPRequestByID(ctx context.Context, id int64, since time.Time) (*entity.OTPRequest, error)
	GetUsableOTPRequestByUUID(ctx context.Context, uuid string, since time.Time) (*entity.OTPRequest, error)
	CreateOTPRequestIfIdle(ctx context.Context, req entity.OTPRequest, since time.Time) error
	ConsumeOTPRequest(ctx context.Context, id int64, since time.Time) (bool, error)

	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.NewUser) error
}

type repoSession interface {
	Get(ctx context.Context, sid string) (*entity.LoginSession, error)
	Save(ctx context.Context, sid string, sess *entity.LoginSession) error
	Delete(ctx context.Context, sid string) error
}

type phoneParser interface {
	Parse(raw string) (string, error)
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoSession   repoSession
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	phone         phoneParser
	otp           otp.Generator
	password      hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	sessionID     uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      enforcer
	backends      []Backend

	otpRequests   metric.Int64Counter
	loginAttempts metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoSession   repoSession
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Phone         phoneParser
	OTP           otp.Generator
	Password      hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	SessionID     uid.StringID // fresh session ids after login
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoSession:   dep.RepoSession,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		phone:         dep.Phone,
		otp:           dep.OTP,
		password:      dep.Password,
		uid:           dep.UID,
		uuid:          dep.UUID,
		sessionID:     dep.SessionID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}

	// phone first so a request carrying both kinds of proof is resolved
	// the same way every time
	s.backends = []Backend{&PhoneOTPBackend{s: s}, &EmailPasswordBackend{s: s}}

	meter := s.ins.Meter("accounts.usecase")
	var err error
	if s.otpRequests, err = meter.Int64Counter("accounts.otp.requests",
		metric.WithDescription("OTP requests created")); err != nil {
		slog.Warn("failed to create counter", "name", "accounts.otp.requests", "error", err)
	}
	if s.loginAttempts, err = meter.Int64Counter("accounts.login.attempts",
		metric.WithDescription("Authentication attempts by backend and result")); err != nil {
		slog.Warn("failed to create counter", "name", "accounts.login.attempts", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("accounts.usecase").Start(ctx, name)
}

func (s *Usecase) countOTPRequest(ctx context.Context) {
	if s.otpRequests != nil {
		s.otpRequests.Add(ctx, 1)
	}
}

func (s *Usecase) countLoginAttempt(ctx context.Context, backend, result string) {
	if s.loginAttempts != nil {
		s.loginAttempts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("result", result),
		))
	}
}

// loadSettings reads the singleton settings row. A missing row is a
// deployment error, not something the caller can fix.
func (s *Usecase) loadSettings(ctx context.Context) (*entity.OTPSettings, error) {
	st, err := s.repoDB.GetOTPSettings(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "otp settings row is missing", "error", entity.ErrSettingsMissing)
		return nil, goerror.NewServer(entity.ErrSettingsMissing)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp settings", "error", err)
		return nil, goerror.NewServer(err)
	}

	return st, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
