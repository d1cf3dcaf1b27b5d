package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"kingdojo/internal/auth"
	"kingdojo/internal/observability"
	"kingdojo/internal/views"
)

// IdentityResolver resolves the authenticated identity for a request.
type IdentityResolver interface {
	CurrentUser(r *http.Request) (auth.Identity, error)
}

// Allowlist answers whether an email may administer the site.
type Allowlist interface {
	Lookup(ctx context.Context, email string) LookupResult
}

// State is where a request ends up in the gate.
type State int

const (
	Unauthenticated State = iota
	Authorized
	Denied
)

// Decision is the outcome for one request. Result is nil when Unauthenticated.
type Decision struct {
	State    State
	Identity auth.Identity
	Result   LookupResult
}

// Gate is the final authorization check in front of every admin page.
// Nothing is cached: removing an allowlist entry applies to the next request.
type Gate struct {
	resolver    IdentityResolver
	allowlist   Allowlist
	timeout     time.Duration
	loginPath   string
	signOutPath string
	logger      zerolog.Logger
}

func NewGate(resolver IdentityResolver, allowlist Allowlist, timeout time.Duration, logger zerolog.Logger) *Gate {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Gate{
		resolver:    resolver,
		allowlist:   allowlist,
		timeout:     timeout,
		loginPath:   LoginPath,
		signOutPath: SignOutPath,
		logger:      logger,
	}
}

// Decide runs identity resolution and the allowlist check.
func (g *Gate) Decide(r *http.Request) Decision {
	id, err := g.resolver.CurrentUser(r)
	if err != nil || id.Email == "" {
		return Decision{State: Unauthenticated}
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()
	result := g.allowlist.Lookup(ctx, id.Email)

	switch result.(type) {
	case Found:
		return Decision{State: Authorized, Identity: id, Result: result}
	case NotFound, QueryError:
		return Decision{State: Denied, Identity: id, Result: result}
	default:
		// Unknown result types fail closed.
		return Decision{State: Denied, Identity: id, Result: QueryError{Err: errors.New("unrecognized allowlist result")}}
	}
}

// Middleware renders admin content only for allowlisted identities.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		switch d.State {
		case Authorized:
			observability.GateDecisions.WithLabelValues("authorized").Inc()
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), d.Identity)))
		case Denied:
			label := "denied"
			if qe, ok := d.Result.(QueryError); ok {
				label = "query_error"
				g.logger.Error().Err(qe.Err).Str("email", d.Identity.Email).Msg("allowlist lookup failed")
			} else {
				g.logger.Warn().Str("email", d.Identity.Email).Msg("admin access denied")
			}
			observability.GateDecisions.WithLabelValues(label).Inc()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusForbidden)
			if err := views.DenyPage(d.Identity.Email, Detail(d.Result), g.signOutPath).Render(w); err != nil {
				g.logger.Error().Err(err).Msg("render deny page")
			}
		default:
			observability.GateDecisions.WithLabelValues("unauthenticated").Inc()
			http.Redirect(w, r, g.loginPath, http.StatusFound)
		}
	})
}

// Detail serializes the lookup outcome for the deny page. Empty for Found.
func Detail(result LookupResult) string {
	var payload map[string]any
	switch res := result.(type) {
	case Found:
		return ""
	case NotFound:
		payload = map[string]any{
			"message":     "no allowlist entry matched",
			"looking_for": res.Email,
			"rows":        0,
		}
	case QueryError:
		payload = map[string]any{"message": errorMessage(res.Err)}
		var pgErr *pgconn.PgError
		if errors.As(res.Err, &pgErr) {
			payload["code"] = pgErr.Code
			payload["details"] = pgErr.Detail
			payload["hint"] = pgErr.Hint
		}
		if errors.Is(res.Err, context.DeadlineExceeded) {
			payload["timeout"] = true
		}
	default:
		return ""
	}
	buf, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ""
	}
	return string(buf)
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
