package router

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/uid"
)

const (
	defaultSessionCookie = "sid"
	defaultSessionTTL    = 2 * time.Hour
	sessionIDLength      = 64
)

type sessionIDKey struct{}

type sessionIssuerKey struct{}

// sessionIssuer writes the session cookie for sid on the current response.
type sessionIssuer func(w http.ResponseWriter, sid string)

// SessionID returns the session handle stored in ctx, or "".
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey{}).(string)
	return sid
}

// WithSessionID returns a copy of ctx carrying sid.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sid)
}

func validSessionID(sid string) bool {
	if len(sid) != sessionIDLength {
		return false
	}
	_, err := hex.DecodeString(sid)
	return err == nil
}

func (cfg SessionConfig) cookie(sid string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// replaceCookie drops any Set-Cookie already queued for c.Name before adding c.
func replaceCookie(w http.ResponseWriter, c *http.Cookie) {
	h := w.Header()
	prefix := c.Name + "="
	kept := h["Set-Cookie"][:0]
	for _, v := range h["Set-Cookie"] {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h["Set-Cookie"] = kept
	http.SetCookie(w, c)
}

// middlewareSession reuses a well formed session cookie or issues a new one,
// refreshing the cookie expiry on every request. A cookie the store does not
// know carries no state; handlers that change privilege move the session to a
// fresh id through Request.RenewSession.
func middlewareSession(gen uid.StringID, cfg SessionConfig) Middleware {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultSessionCookie
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(cfg.CookieName); err == nil && validSessionID(c.Value) {
				sid = c.Value
			}
			if sid == "" && gen != nil {
				sid = gen.Generate()
			}
			if sid == "" {
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, cfg.cookie(sid))

			issue := sessionIssuer(func(w http.ResponseWriter, sid string) {
				replaceCookie(w, cfg.cookie(sid))
			})
			ctx := context.WithValue(WithSessionID(r.Context(), sid), sessionIssuerKey{}, issue)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
