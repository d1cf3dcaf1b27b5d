package middleware

import (
	"net/http"
	"strings"

	"filippo.io/csrf/gorilla"
	"github.com/rs/zerolog"
)

// CrossOrigin rejects cross-origin form posts using Fetch metadata headers.
// trustedOrigins is a comma-separated list of host[:port] values.
func CrossOrigin(authKey []byte, trustedOrigins string, logger zerolog.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			logger.Warn().
				Str("reason", reason).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("origin", r.Header.Get("Origin")).
				Msg("cross-origin request rejected")
			http.Error(w, "forbidden", http.StatusForbidden)
		})),
	}
	var origins []string
	for _, o := range strings.Split(trustedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(origins))
	}
	return csrf.Protect(authKey, opts...)
}
