package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message" example:"example string message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"example string message"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Handler returns the payload to wrap in the success envelope, or an error
// that is rendered through goerror.
type Handler func(r *Request) (any, error)

type Middleware func(next http.Handler) http.Handler

// Chain applies mws around h, first one outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type Config struct {
	Config     config.Config
	UUID       uid.StringID // correlation ids
	SessionID  uid.StringID // session cookie values
	Session    SessionConfig
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	// PublicEndpoints maps an HTTP method to route patterns served without a
	// bearer token.
	PublicEndpoints map[string][]string
}

type Router struct {
	hr      *httprouter.Router
	mws     []Middleware
	session Middleware
}

func newRouteSet(extra map[string][]string) routeSet {
	set := routeSet{http.MethodGet: {"/": {}, "/health": {}}}
	for method, patterns := range extra {
		if set[method] == nil {
			set[method] = make(map[string]struct{}, len(patterns))
		}
		for _, p := range patterns {
			set[method][p] = struct{}{}
		}
	}
	return set
}

func jsonStatus(msg string, code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Message: msg}, code)
	}
}

// NewRouter returns a router whose routes all run behind recovery, client IP,
// correlation id, observability, maintenance and bearer auth middleware.
func NewRouter(cfg Config) *Router {
	hr := httprouter.New()
	hr.SaveMatchedRoutePath = true
	hr.NotFound = jsonStatus("endpoint not found", http.StatusNotFound)
	hr.MethodNotAllowed = jsonStatus("method not allowed", http.StatusMethodNotAllowed)
	hr.Handler(http.MethodGet, "/", jsonStatus("Storefront API", http.StatusNotFound))

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, ins),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, newRouteSet(cfg.PublicEndpoints)),
		},
		session: middlewareSession(cfg.SessionID, cfg.Session),
	}
}

// Session returns the middleware that attaches a cookie backed session id to
// the request context. Routes opt in by passing it at registration.
func (r *Router) Session() Middleware {
	return r.session
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodGet, path, h, mws)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodPost, path, h, mws)
}

func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodPut, path, h, mws)
}

func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodDelete, path, h, mws)
}

// handle registers h behind the shared middleware followed by the route's own.
func (r *Router) handle(method, path string, h Handler, route []Middleware) {
	r.hr.Handler(method, path, Chain(adapt(h), slices.Concat(r.mws, route)...))
}

func adapt(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, hr *http.Request) {
		resp, err := h(&Request{Request: hr, w: w})
		if err == nil {
			encodeOK(w, resp)
			return
		}
		if rec, ok := w.(interface{ SetError(error) }); ok {
			rec.SetError(err)
		}
		encodeError(hr.Context(), w, err)
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func encodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unmapped handler error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		resp.Error = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Error = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

// encodeOK writes the success envelope. resp may override the status, the
// message and the meta block through the StatusCode, Message and Meta methods.
func encodeOK(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}
	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := successResponse{Message: "ok", Data: resp}
	if m, ok := resp.(interface{ Message() string }); ok {
		out.Message = m.Message()
	}
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		out.Meta = m.Meta()
	}
	writeJSON(w, out, code)
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: encode response", "error", err)
	}
}
