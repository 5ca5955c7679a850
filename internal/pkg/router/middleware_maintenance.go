package router

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shandysiswandi/storefront/internal/pkg/config"
)

// middlewareMaintenance answers 503 for the route patterns listed under
// app.maintenance.endpoints. A "*" entry closes every route.
func middlewareMaintenance(cfg config.Config) Middleware {
	var closed []string
	var retryAfter int
	if cfg != nil {
		for _, p := range cfg.GetArray("app.maintenance.endpoints") {
			if p = strings.TrimSpace(p); p != "" {
				closed = append(closed, p)
			}
		}
		retryAfter = cfg.GetInt("app.maintenance.retry_after_seconds")
	}
	all := slices.Contains(closed, "*")

	return func(next http.Handler) http.Handler {
		if len(closed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !all && !slices.Contains(closed, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			writeJSON(w, errorResponse{Message: "temporarily unavailable for maintenance"}, http.StatusServiceUnavailable)
		})
	}
}
