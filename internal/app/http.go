package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	accountsinbound "github.com/shandysiswandi/storefront/internal/accounts/inbound"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type healthResponse struct {
	Status string `json:"status"`
}

// health reports whether postgres and redis answer within two seconds.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := errors.Join(a.dbConn.Ping(ctx), a.cacheConn.Ping(ctx).Err()); err != nil {
		return nil, goerror.NewServer(err)
	}
	return healthResponse{Status: "ok"}, nil
}

func (a *App) initHTTPServer() error {
	c := a.config
	a.router = router.NewRouter(router.Config{
		Config:    c,
		UUID:      a.uuid,
		SessionID: a.oid,
		Session: router.SessionConfig{
			CookieName: c.GetString("modules.accounts.session.cookie_name"),
			TTL:        c.GetMinute("modules.accounts.session.ttl_minutes"),
			Secure:     c.GetBool("modules.accounts.session.secure_cookie"),
		},
		JWT:             a.jwt,
		Instrument:      a.ins,
		PublicEndpoints: accountsinbound.PublicEndpoints,
	})
	a.router.GET("/health", a.health)

	// Credentials are allowed so browsers send the session cookie.
	handler := cors.New(cors.Options{
		AllowedOrigins:   c.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Correlation-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              c.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       c.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: c.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      c.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       c.GetSecond("app.server.http.idle_timeout_seconds"),
	}
	return nil
}
