package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Provider is the auth collaborator consumed by the HTTP layer.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password, userAgent, ip string) (Tokens, error)
	GetUser(ctx context.Context, accessToken string) (Identity, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionManager binds the collaborator to request cookies.
type SessionManager struct {
	provider Provider
	cookies  Cookies
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewSessionManager(provider Provider, cookies Cookies, timeout time.Duration, logger zerolog.Logger) *SessionManager {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &SessionManager{provider: provider, cookies: cookies, timeout: timeout, logger: logger}
}

// Cookies exposes the cookie settings.
func (m *SessionManager) Cookies() Cookies {
	return m.cookies
}

// UpdateSession validates the session cookie and rotates it when the access
// token is no longer accepted. It only touches response cookies, never the body.
// A returned error means the collaborator could not answer; the request is
// returned unchanged in that case.
func (m *SessionManager) UpdateSession(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	access := m.cookies.SessionToken(r)
	refresh := m.cookies.RefreshToken(r)
	if access == "" && refresh == "" {
		return r, nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()

	if access != "" {
		_, err := m.provider.GetUser(ctx, access)
		if err == nil {
			return r.WithContext(WithAccessToken(r.Context(), access)), nil
		}
		if !Rejected(err) {
			return r, err
		}
	}
	if refresh == "" {
		m.cookies.Clear(w)
		return r, nil
	}

	tokens, err := m.provider.Refresh(ctx, refresh)
	if err != nil {
		if Rejected(err) {
			m.logger.Debug().Err(err).Msg("session refresh rejected, clearing cookies")
			m.cookies.Clear(w)
			return r, nil
		}
		return r, err
	}
	m.cookies.Write(w, tokens)
	return r.WithContext(WithAccessToken(r.Context(), tokens.AccessToken)), nil
}

// CurrentUser resolves the identity for the request, preferring a token
// refreshed earlier in the chain over the inbound cookie.
func (m *SessionManager) CurrentUser(r *http.Request) (Identity, error) {
	token, ok := AccessTokenFromContext(r.Context())
	if !ok {
		token = m.cookies.SessionToken(r)
	}
	if token == "" {
		return Identity{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()
	return m.provider.GetUser(ctx, token)
}

// SignIn authenticates with email and password and writes the session cookies.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, email, password string) error {
	if err := m.cookies.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()
	tokens, err := m.provider.SignInWithPassword(ctx, email, password, r.UserAgent(), remoteIP(r))
	if err != nil {
		return err
	}
	m.cookies.Write(w, tokens)
	return nil
}

// SignOut revokes the session and always clears the cookies.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	defer m.cookies.Clear(w)
	token, ok := AccessTokenFromContext(r.Context())
	if !ok {
		token = m.cookies.SessionToken(r)
	}
	if token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()
	err := m.provider.SignOut(ctx, token)
	if Rejected(err) {
		return nil
	}
	return err
}
