package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/accounts/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type uc interface {
	LoginIdentify(ctx context.Context, in usecase.LoginIdentifyInput) (*usecase.LoginIdentifyOutput, error)
	LoginConfirmOTPView(ctx context.Context, in usecase.LoginViewInput) (*usecase.LoginConfirmOTPViewOutput, error)
	LoginConfirmOTP(ctx context.Context, in usecase.LoginConfirmOTPInput) (*usecase.LoginConfirmOutput, error)
	LoginConfirmEmailView(ctx context.Context, in usecase.LoginViewInput) (*usecase.LoginConfirmEmailViewOutput, error)
	LoginConfirmEmail(ctx context.Context, in usecase.LoginConfirmEmailInput) (*usecase.LoginConfirmOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
	GetSession(ctx context.Context, in usecase.LoginViewInput) (*usecase.GetSessionOutput, error)

	RequestOTP(ctx context.Context, in usecase.RequestOTPInput) (*usecase.RequestOTPOutput, error)
	IssueToken(ctx context.Context, in usecase.IssueTokenInput) (*usecase.IssueTokenOutput, error)

	GetSettings(ctx context.Context) (*entity.OTPSettings, error)
	CreateSettings(ctx context.Context, in usecase.SettingsInput) (*entity.OTPSettings, error)
	UpdateSettings(ctx context.Context, in usecase.SettingsInput) (*entity.OTPSettings, error)
	DeleteSettings(ctx context.Context) error
}

// PublicEndpoints lists the routes that carry no bearer token. The login
// routes are guarded by the session cookie instead.
var PublicEndpoints = map[string][]string{
	http.MethodGet: {
		"/api/v1/accounts/login/confirm-otp",
		"/api/v1/accounts/login/confirm-email",
		"/api/v1/accounts/session",
	},
	http.MethodPost: {
		"/api/v1/accounts/login/request",
		"/api/v1/accounts/login/confirm-otp",
		"/api/v1/accounts/login/confirm-email",
		"/api/v1/accounts/logout",
		"/api/v1/accounts/otp/request",
		"/api/v1/accounts/token",
	},
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	session := r.Session()

	// Browser login (cookie session)
	r.POST("/api/v1/accounts/login/request", end.LoginRequest, session)
	r.GET("/api/v1/accounts/login/confirm-otp", end.LoginConfirmOTPView, session)
	r.POST("/api/v1/accounts/login/confirm-otp", end.LoginConfirmOTP, session)
	r.GET("/api/v1/accounts/login/confirm-email", end.LoginConfirmEmailView, session)
	r.POST("/api/v1/accounts/login/confirm-email", end.LoginConfirmEmail, session)
	r.POST("/api/v1/accounts/logout", end.Logout, session)
	r.GET("/api/v1/accounts/session", end.Session, session)

	// API clients
	r.POST("/api/v1/accounts/otp/request", end.RequestOTP)
	r.POST("/api/v1/accounts/token", end.IssueToken)

	// OTP settings (need authenticated & authorization)
	r.GET("/api/v1/accounts/otp/settings", end.GetSettings)
	r.POST("/api/v1/accounts/otp/settings", end.CreateSettings)
	r.PUT("/api/v1/accounts/otp/settings", end.UpdateSettings)
	r.DELETE("/api/v1/accounts/otp/settings", end.DeleteSettings)
}
