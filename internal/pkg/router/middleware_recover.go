package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/storefront/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			switch v {
			case nil:
				return
			case http.ErrAbortHandler: //nolint:errorlint // sentinel panic value
				panic(v)
			}

			var stack any = stacktrace.InternalPaths(debug.Stack())
			if frames, _ := stack.([]string); len(frames) == 0 {
				stack = string(debug.Stack())
			}
			slog.ErrorContext(r.Context(), "recovered from handler panic", "panic", v, "stack", stack)

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
