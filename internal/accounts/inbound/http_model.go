package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
)

type LoginRequestRequest struct {
	Identifier string `json:"identifier"`
	Next       string `json:"next"`
}

type LoginRequestResponse struct {
	State           string `json:"state"`
	NextStep        string `json:"next_step,omitempty"`
	RedirectTo      string `json:"redirect_to,omitempty"`
	CooldownSeconds int    `json:"cooldown_seconds,omitempty"`
}

func (r LoginRequestResponse) Message() string {
	if r.State == string(entity.LoginStateOTPPending) {
		return "A login code has been sent to your phone number."
	}
	return "request has been successfully"
}

type LoginConfirmOTPViewResponse struct {
	PhoneNumber      string `json:"phone_number,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds"`
	RedirectTo       string `json:"redirect_to,omitempty"`
}

type LoginConfirmOTPRequest struct {
	Code string `json:"code"`
	Next string `json:"next"`
}

type LoginConfirmEmailViewResponse struct {
	Email      string `json:"email,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type LoginConfirmEmailRequest struct {
	Password string `json:"password"`
	Next     string `json:"next"`
}

type LoginConfirmResponse struct {
	UserID     int64  `json:"user_id,string"`
	RedirectTo string `json:"redirect_to"`
}

func (LoginConfirmResponse) Message() string {
	return "You are logged in."
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "You are logged out."
}

type SessionResponse struct {
	State       string `json:"state"`
	UserID      int64  `json:"user_id,string,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type RequestOTPResponse struct {
	OTPUUID         string `json:"otp_uuid"`
	CooldownSeconds int    `json:"cooldown_seconds"`
}

func (RequestOTPResponse) Message() string {
	return "A login code has been sent to your phone number."
}

type IssueTokenRequest struct {
	OTPUUID  string `json:"otp_uuid"`
	Code     string `json:"code"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type IssueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id,string"`
}

type SettingsRequest struct {
	CodeType            string `json:"code_type"`
	CodeLength          int    `json:"code_length"`
	CodeValiditySeconds int    `json:"code_validity_seconds"`
	CaseSensitive       bool   `json:"case_sensitive"`
}

type SettingsResponse struct {
	CodeType            string    `json:"code_type"`
	CodeLength          int       `json:"code_length"`
	CodeValiditySeconds int       `json:"code_validity_seconds"`
	CaseSensitive       bool      `json:"case_sensitive"`
	UpdatedAt           time.Time `json:"updated_at"`

	created bool
}

func (r SettingsResponse) StatusCode() int {
	if r.created {
		return http.StatusCreated
	}
	return http.StatusOK
}
