package inbound

import (
	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/accounts/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// nextOf prefers the body value and falls back to the ?next= query.
func nextOf(r *router.Request, body string) string {
	if body != "" {
		return body
	}
	return r.GetQuery("next")
}

// loginConfirmed moves the session cookie to the id the login was saved under.
func loginConfirmed(r *router.Request, out *usecase.LoginConfirmOutput) LoginConfirmResponse {
	if out.SessionID != "" {
		r.RenewSession(out.SessionID)
	}
	return LoginConfirmResponse{UserID: out.UserID, RedirectTo: out.RedirectTo}
}

// LoginRequest handles the identifier step of the browser login.
//
// @Summary      Start login
// @Description  Accepts a phone number or an email address. A phone number receives an OTP by SMS.
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        next     query     string               false  "Redirect target after login"
// @Param        payload  body      LoginRequestRequest  true   "Identifier"
// @Success      200      {object}  router.successResponse{data=LoginRequestResponse}
// @Failure      400      {object}  router.errorResponse
// @Failure      422      {object}  router.errorResponse
// @Failure      429      {object}  router.errorResponse
// @Failure      500      {object}  router.errorResponse
// @Router       /api/v1/accounts/login/request [post]
func (h *HTTPEndpoint) LoginRequest(r *router.Request) (any, error) {
	var req LoginRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.LoginIdentify(r.Context(), usecase.LoginIdentifyInput{
		SessionID:  r.SessionID(),
		Identifier: req.Identifier,
		Next:       nextOf(r, req.Next),
	})
	if err != nil {
		return nil, err
	}

	return LoginRequestResponse{
		State:           string(out.State),
		NextStep:        out.NextStep,
		RedirectTo:      out.RedirectTo,
		CooldownSeconds: out.CooldownSeconds,
	}, nil
}

// LoginConfirmOTPView describes the pending OTP step.
//
// @Summary      OTP step
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  router.successResponse{data=LoginConfirmOTPViewResponse}
// @Failure      404  {object}  router.errorResponse
// @Router       /api/v1/accounts/login/confirm-otp [get]
func (h *HTTPEndpoint) LoginConfirmOTPView(r *router.Request) (any, error) {
	out, err := h.uc.LoginConfirmOTPView(r.Context(), usecase.LoginViewInput{
		SessionID: r.SessionID(),
		Next:      r.GetQuery("next"),
	})
	if err != nil {
		return nil, err
	}

	return LoginConfirmOTPViewResponse{
		PhoneNumber:      out.PhoneNumber,
		RemainingSeconds: out.RemainingSeconds,
		RedirectTo:       out.RedirectTo,
	}, nil
}

// LoginConfirmOTP finishes a phone login.
//
// @Summary      Confirm OTP
// @Description  Verifies the code sent by SMS and logs the session in.
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        next     query     string                  false  "Redirect target after login"
// @Param        payload  body      LoginConfirmOTPRequest  true   "Code"
// @Success      200      {object}  router.successResponse{data=LoginConfirmResponse}
// @Failure      400      {object}  router.errorResponse
// @Failure      401      {object}  router.errorResponse
// @Failure      404      {object}  router.errorResponse
// @Failure      500      {object}  router.errorResponse
// @Router       /api/v1/accounts/login/confirm-otp [post]
func (h *HTTPEndpoint) LoginConfirmOTP(r *router.Request) (any, error) {
	var req LoginConfirmOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.LoginConfirmOTP(r.Context(), usecase.LoginConfirmOTPInput{
		SessionID: r.SessionID(),
		Code:      req.Code,
		Next:      nextOf(r, req.Next),
	})
	if err != nil {
		return nil, err
	}

	return loginConfirmed(r, out), nil
}

// LoginConfirmEmailView describes the pending password step.
//
// @Summary      Password step
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  router.successResponse{data=LoginConfirmEmailViewResponse}
// @Failure      404  {object}  router.errorResponse
// @Router       /api/v1/accounts/login/confirm-email [get]
func (h *HTTPEndpoint) LoginConfirmEmailView(r *router.Request) (any, error) {
	out, err := h.uc.LoginConfirmEmailView(r.Context(), usecase.LoginViewInput{
		SessionID: r.SessionID(),
		Next:      r.GetQuery("next"),
	})
	if err != nil {
		return nil, err
	}

	return LoginConfirmEmailViewResponse{Email: out.Email, RedirectTo: out.RedirectTo}, nil
}

// LoginConfirmEmail finishes an email login.
//
// @Summary      Confirm password
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        next     query     string                    false  "Redirect target after login"
// @Param        payload  body      LoginConfirmEmailRequest  true   "Password"
// @Success      200      {object}  router.successResponse{data=LoginConfirmResponse}
// @Failure      400      {object}  router.errorResponse
// @Failure      401      {object}  router.errorResponse
// @Failure      404      {object}  router.errorResponse
// @Failure      500      {object}  router.errorResponse
// @Router       /api/v1/accounts/login/confirm-email [post]
func (h *HTTPEndpoint) LoginConfirmEmail(r *router.Request) (any, error) {
	var req LoginConfirmEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.LoginConfirmEmail(r.Context(), usecase.LoginConfirmEmailInput{
		SessionID: r.SessionID(),
		Password:  req.Password,
		Next:      nextOf(r, req.Next),
	})
	if err != nil {
		return nil, err
	}

	return loginConfirmed(r, out), nil
}

// Logout resets the session to the start of the login.
//
// @Summary      Logout
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  router.successResponse{data=LogoutResponse}
// @Failure      500  {object}  router.errorResponse
// @Router       /api/v1/accounts/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{SessionID: r.SessionID()}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// Session reports where the current session stands.
//
// @Summary      Current session
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  router.successResponse{data=SessionResponse}
// @Failure      500  {object}  router.errorResponse
// @Router       /api/v1/accounts/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	out, err := h.uc.GetSession(r.Context(), usecase.LoginViewInput{SessionID: r.SessionID()})
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		State:       string(out.State),
		UserID:      out.UserID,
		PhoneNumber: out.PhoneNumber,
		Email:       out.Email,
	}, nil
}

// RequestOTP sends a login code to an API client.
//
// @Summary      Request OTP
// @Description  Sends a code by SMS and returns the request uuid to pair with it.
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      RequestOTPRequest  true  "Phone number"
// @Success      200      {object}  router.successResponse{data=RequestOTPResponse}
// @Failure      400      {object}  router.errorResponse
// @Failure      422      {object}  router.errorResponse
// @Failure      429      {object}  router.errorResponse
// @Failure      500      {object}  router.errorResponse
// @Router       /api/v1/accounts/otp/request [post]
func (h *HTTPEndpoint) RequestOTP(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.RequestOTP(r.Context(), usecase.RequestOTPInput{PhoneNumber: req.PhoneNumber})
	if err != nil {
		return nil, err
	}

	return RequestOTPResponse{OTPUUID: out.OTPUUID, CooldownSeconds: out.CooldownSeconds}, nil
}

// IssueToken exchanges credentials for an access token.
//
// @Summary      Issue token
// @Description  Accepts otp_uuid with code, or email with password.
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        payload  body      IssueTokenRequest  true  "Credentials"
// @Success      200      {object}  router.successResponse{data=IssueTokenResponse}
// @Failure      400      {object}  router.errorResponse
// @Failure      401      {object}  router.errorResponse
// @Failure      500      {object}  router.errorResponse
// @Router       /api/v1/accounts/token [post]
func (h *HTTPEndpoint) IssueToken(r *router.Request) (any, error) {
	var req IssueTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.IssueToken(r.Context(), usecase.IssueTokenInput{
		OTPUUID:  req.OTPUUID,
		Code:     req.Code,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return IssueTokenResponse{AccessToken: out.AccessToken, TokenType: out.TokenType, UserID: out.UserID}, nil
}

// GetSettings
//
// @Summary      Get OTP settings
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  router.successResponse{data=SettingsResponse}
// @Failure      401  {object}  router.errorResponse
// @Failure      403  {object}  router.errorResponse
// @Router       /api/v1/accounts/otp/settings [get]
func (h *HTTPEndpoint) GetSettings(r *router.Request) (any, error) {
	out, err := h.uc.GetSettings(r.Context())
	if err != nil {
		return nil, err
	}

	return toSettingsResponse(out, false), nil
}

// CreateSettings
//
// @Summary      Create OTP settings
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      SettingsRequest  true  "Settings"
// @Success      201      {object}  router.successResponse{data=SettingsResponse}
// @Failure      401      {object}  router.errorResponse
// @Failure      403      {object}  router.errorResponse
// @Failure      409      {object}  router.errorResponse
// @Failure      422      {object}  router.errorResponse
// @Router       /api/v1/accounts/otp/settings [post]
func (h *HTTPEndpoint) CreateSettings(r *router.Request) (any, error) {
	var req SettingsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreateSettings(r.Context(), req.toInput())
	if err != nil {
		return nil, err
	}

	return toSettingsResponse(out, true), nil
}

// UpdateSettings
//
// @Summary      Update OTP settings
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      SettingsRequest  true  "Settings"
// @Success      200      {object}  router.successResponse{data=SettingsResponse}
// @Failure      401      {object}  router.errorResponse
// @Failure      403      {object}  router.errorResponse
// @Failure      404      {object}  router.errorResponse
// @Failure      422      {object}  router.errorResponse
// @Router       /api/v1/accounts/otp/settings [put]
func (h *HTTPEndpoint) UpdateSettings(r *router.Request) (any, error) {
	var req SettingsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateSettings(r.Context(), req.toInput())
	if err != nil {
		return nil, err
	}

	return toSettingsResponse(out, false), nil
}

// DeleteSettings always refuses; the settings row can only be edited.
//
// @Summary      Delete OTP settings
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Failure      403  {object}  router.errorResponse
// @Router       /api/v1/accounts/otp/settings [delete]
func (h *HTTPEndpoint) DeleteSettings(r *router.Request) (any, error) {
	return nil, h.uc.DeleteSettings(r.Context())
}

func (req SettingsRequest) toInput() usecase.SettingsInput {
	return usecase.SettingsInput{
		CodeType:            req.CodeType,
		CodeLength:          req.CodeLength,
		CodeValiditySeconds: req.CodeValiditySeconds,
		CaseSensitive:       req.CaseSensitive,
	}
}

func toSettingsResponse(s *entity.OTPSettings, created bool) SettingsResponse {
	return SettingsResponse{
		CodeType:            string(s.CodeType),
		CodeLength:          s.CodeLength,
		CodeValiditySeconds: s.CodeValiditySeconds,
		CaseSensitive:       s.CaseSensitive,
		UpdatedAt:           s.UpdatedAt,
		created:             created,
	}
}
