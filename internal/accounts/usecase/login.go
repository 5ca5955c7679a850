package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/phone"
)

const (
	msgInvalidIdentifier = "Please Enter a valid phone number or email address."
	msgEmailNotFound     = "User with this email address not found please try logging in with phone number."
	msgInvalidCode       = "The code is invalid or expired."
	msgInvalidPassword   = "invalid password!"

	pathConfirmOTP   = "/api/v1/accounts/login/confirm-otp"
	pathConfirmEmail = "/api/v1/accounts/login/confirm-email"
)

var errPageNotFound = goerror.NewBusiness("page not found", goerror.CodeNotFound)

type LoginIdentifyInput struct {
	SessionID  string `validate:"required"`
	Identifier string
	Next       string
}

type LoginIdentifyOutput struct {
	State           entity.LoginState
	NextStep        string
	RedirectTo      string
	CooldownSeconds int
}

// LoginIdentify starts a login from a phone number or an email address.
// Phone numbers win: an identifier that parses as a phone is never tried
// as an email.
func (s *Usecase) LoginIdentify(ctx context.Context, in LoginIdentifyInput) (*LoginIdentifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginIdentify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	if sess.IsAuthenticated() {
		return &LoginIdentifyOutput{State: sess.State, RedirectTo: s.redirectTarget(in.Next)}, nil
	}

	identifier := strings.TrimSpace(in.Identifier)

	if phoneNumber, err := s.phone.Parse(identifier); err == nil {
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

		sess.IdentifyPhone(req.ID, phoneNumber)
		if err := s.saveSession(ctx, in.SessionID, sess); err != nil {
			return nil, err
		}

		return &LoginIdentifyOutput{
			State:           sess.State,
			NextStep:        withNext(pathConfirmOTP, in.Next),
			CooldownSeconds: RemainingSeconds(*req, *settings, s.clock.Now()),
		}, nil
	}

	if !s.validator.Var(identifier, "required,email") {
		return nil, goerror.NewInvalidInput(nil, "identifier", msgInvalidIdentifier)
	}

	if _, err := s.GetByEmail(ctx, identifier); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewInvalidInput(nil, "identifier", msgEmailNotFound)
		}
		return nil, err
	}

	sess.IdentifyEmail(identifier)
	if err := s.saveSession(ctx, in.SessionID, sess); err != nil {
		return nil, err
	}

	return &LoginIdentifyOutput{State: sess.State, NextStep: withNext(pathConfirmEmail, in.Next)}, nil
}

type LoginViewInput struct {
	SessionID string `validate:"required"`
	Next      string
}

// LoginConfirmOTPViewOutput describes the OTP step. RedirectTo alone is set
// when the session is already logged in.
type LoginConfirmOTPViewOutput struct {
	PhoneNumber      string
	RemainingSeconds int
	RedirectTo       string
}

// LoginConfirmOTPView describes the pending OTP step. The remaining time
// is zero once the code expired or was used.
func (s *Usecase) LoginConfirmOTPView(ctx context.Context, in LoginViewInput) (*LoginConfirmOTPViewOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginConfirmOTPView")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return &LoginConfirmOTPViewOutput{RedirectTo: s.redirectTarget(in.Next)}, nil
	}
	if !sess.CanConfirmOTP() {
		return nil, errPageNotFound
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &LoginConfirmOTPViewOutput{PhoneNumber: phone.Mask(sess.PhoneNumber)}

	req, err := s.repoDB.GetUsableOTPRequestByID(ctx, sess.OTPID, now.Add(-settings.Validity()))
	switch {
	case errors.Is(err, goerror.ErrNotFound):
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo get otp request", "otp_id", sess.OTPID, "error", err)
		return nil, goerror.NewServer(err)
	default:
		out.RemainingSeconds = RemainingSeconds(*req, *settings, now)
	}

	return out, nil
}

type LoginConfirmEmailViewOutput struct {
	Email      string
	RedirectTo string
}

func (s *Usecase) LoginConfirmEmailView(ctx context.Context, in LoginViewInput) (*LoginConfirmEmailViewOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginConfirmEmailView")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return &LoginConfirmEmailViewOutput{RedirectTo: s.redirectTarget(in.Next)}, nil
	}
	if !sess.CanConfirmEmail() {
		return nil, errPageNotFound
	}

	return &LoginConfirmEmailViewOutput{Email: sess.Email}, nil
}

type LoginConfirmOTPInput struct {
	SessionID string `validate:"required"`
	Code      string
	Next      string
}

// LoginConfirmOutput reports a finished login. SessionID is the id the
// authenticated session now lives under; it is empty when the session was
// already logged in and nothing moved.
type LoginConfirmOutput struct {
	UserID     int64
	RedirectTo string
	SessionID  string
}

// LoginConfirmOTP finishes a phone login. A wrong code leaves the session
// and the code untouched so the user can try again.
func (s *Usecase) LoginConfirmOTP(ctx context.Context, in LoginConfirmOTPInput) (*LoginConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginConfirmOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return s.alreadyLoggedIn(sess, in.Next), nil
	}
	if !sess.CanConfirmOTP() {
		return nil, errPageNotFound
	}

	user, err := s.authenticate(ctx, Credentials{OTPID: sess.OTPID, Code: strings.TrimSpace(in.Code)})
	if errors.Is(err, entity.ErrCredentialsInvalid) {
		return nil, goerror.NewBusiness(msgInvalidCode, goerror.CodeUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, in.SessionID, sess, user, in.Next)
}

type LoginConfirmEmailInput struct {
	SessionID string `validate:"required"`
	Password  string
	Next      string
}

func (s *Usecase) LoginConfirmEmail(ctx context.Context, in LoginConfirmEmailInput) (*LoginConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginConfirmEmail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return s.alreadyLoggedIn(sess, in.Next), nil
	}
	if !sess.CanConfirmEmail() {
		return nil, errPageNotFound
	}

	user, err := s.authenticate(ctx, Credentials{Email: sess.Email, Password: in.Password})
	if errors.Is(err, entity.ErrCredentialsInvalid) {
		return nil, goerror.NewBusiness(msgInvalidPassword, goerror.CodeUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, in.SessionID, sess, user, in.Next)
}

// finishLogin moves the authenticated session to a fresh id and drops the
// pre-login one, so an id known before login is worthless afterwards.
func (s *Usecase) finishLogin(ctx context.Context, sid string, sess *entity.LoginSession, user *entity.User, next string) (*LoginConfirmOutput, error) {
	sess.Authenticate(user.ID)

	newSID := s.sessionID.Generate()
	if err := s.saveSession(ctx, newSID, sess); err != nil {
		return nil, err
	}
	if err := s.repoSession.Delete(ctx, sid); err != nil {
		slog.WarnContext(ctx, "failed to delete pre-login session", "user_id", user.ID, "error", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return &LoginConfirmOutput{UserID: user.ID, RedirectTo: s.redirectTarget(next), SessionID: newSID}, nil
}

func (s *Usecase) alreadyLoggedIn(sess *entity.LoginSession, next string) *LoginConfirmOutput {
	return &LoginConfirmOutput{UserID: sess.UserID, RedirectTo: s.redirectTarget(next)}
}

type LogoutInput struct {
	SessionID string `validate:"required"`
}

func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoSession.Delete(ctx, in.SessionID); err != nil {
		slog.ErrorContext(ctx, "failed to delete login session", "error", err)
		return goerror.NewServer(err)
	}
	return nil
}

type GetSessionOutput struct {
	State       entity.LoginState
	UserID      int64
	PhoneNumber string
	Email       string
}

func (s *Usecase) GetSession(ctx context.Context, in LoginViewInput) (*GetSessionOutput, error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	out := &GetSessionOutput{State: sess.State, UserID: sess.UserID, Email: sess.Email}
	if sess.PhoneNumber != "" {
		out.PhoneNumber = phone.Mask(sess.PhoneNumber)
	}

	return out, nil
}

func (s *Usecase) loadSession(ctx context.Context, sid string) (*entity.LoginSession, error) {
	sess, err := s.repoSession.Get(ctx, sid)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load login session", "error", err)
		return nil, goerror.NewServer(err)
	}
	return sess, nil
}

func (s *Usecase) saveSession(ctx context.Context, sid string, sess *entity.LoginSession) error {
	if err := s.repoSession.Save(ctx, sid, sess); err != nil {
		slog.ErrorContext(ctx, "failed to save login session", "state", sess.State, "error", err)
		return goerror.NewServer(err)
	}
	return nil
}

func (s *Usecase) redirectTarget(next string) string {
	if n := safeNext(next); n != "" {
		return n
	}
	if u := s.cfg.GetString("modules.accounts.login_redirect_url"); u != "" {
		return u
	}
	return "/"
}

// safeNext returns next when it is a path on this site, otherwise "".
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}

	return next
}

func withNext(path, next string) string {
	if n := safeNext(next); n != "" {
		return path + "?next=" + url.QueryEscape(n)
	}
	return path
}
