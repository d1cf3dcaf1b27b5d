package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"kingdojo/internal/observability"
)

// SessionRefresher re-validates the session cookie and may rewrite response cookies.
type SessionRefresher interface {
	UpdateSession(w http.ResponseWriter, r *http.Request) (*http.Request, error)
}

// EdgeConfig describes which paths the edge filter guards.
type EdgeConfig struct {
	AdminPrefix string
	LoginPath   string
	APIPrefix   string
	CookieName  string
	// Exclude matches static asset paths that bypass the filter entirely.
	Exclude *regexp.Regexp
}

// DefaultEdgeConfig returns the /admin, /admin/login, /api layout.
func DefaultEdgeConfig(cookieName string, exclude *regexp.Regexp) EdgeConfig {
	return EdgeConfig{
		AdminPrefix: "/admin",
		LoginPath:   "/admin/login",
		APIPrefix:   "/api",
		CookieName:  cookieName,
		Exclude:     exclude,
	}
}

// Protected reports whether path needs a session cookie.
func (c EdgeConfig) Protected(path string) bool {
	return underPrefix(path, c.AdminPrefix) &&
		!underPrefix(path, c.LoginPath) &&
		!underPrefix(path, c.APIPrefix)
}

// Excluded reports whether path is a static asset the filter skips.
func (c EdgeConfig) Excluded(path string) bool {
	return c.Exclude != nil && c.Exclude.MatchString(path)
}

// EdgeFilter redirects cookie-less requests for protected admin paths to the
// login page and keeps the session fresh for everything else. A failed refresh
// is logged and the request continues; the privilege gate decides later.
func EdgeFilter(cfg EdgeConfig, refresher SessionRefresher, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if cfg.Excluded(path) {
				observability.EdgeRequests.WithLabelValues("skipped").Inc()
				next.ServeHTTP(w, r)
				return
			}
			if cfg.Protected(path) {
				if ck, err := r.Cookie(cfg.CookieName); err != nil || ck.Value == "" {
					observability.EdgeRequests.WithLabelValues("redirected").Inc()
					http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
					return
				}
			}

			refreshed, err := refresher.UpdateSession(w, r)
			if err != nil {
				observability.EdgeRequests.WithLabelValues("refresh_failed").Inc()
				logger.Warn().Err(err).Str("path", path).Msg("session refresh failed")
				next.ServeHTTP(w, r)
				return
			}
			observability.EdgeRequests.WithLabelValues("passed").Inc()
			next.ServeHTTP(w, refreshed)
		})
	}
}

// underPrefix matches prefix on path segment boundaries: "/admin" covers
// "/admin" and "/admin/x" but not "/administration".
func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
