package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdojo/internal/config"
)

type fakeProvider struct {
	users      map[string]Identity
	refreshes  map[string]Tokens
	getErr     error
	refreshErr error
	signOuts   []string
	block      bool
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password, userAgent, ip string) (Tokens, error) {
	if password != "password123" {
		return Tokens{}, ErrInvalidCredentials
	}
	return Tokens{AccessToken: "acc-" + email, RefreshToken: "ref-" + email}, nil
}

func (p *fakeProvider) GetUser(ctx context.Context, accessToken string) (Identity, error) {
	if p.block {
		<-ctx.Done()
		return Identity{}, ctx.Err()
	}
	if p.getErr != nil {
		return Identity{}, p.getErr
	}
	id, ok := p.users[accessToken]
	if !ok {
		return Identity{}, ErrSessionExpired
	}
	return id, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if p.refreshErr != nil {
		return Tokens{}, p.refreshErr
	}
	t, ok := p.refreshes[refreshToken]
	if !ok {
		return Tokens{}, ErrSessionNotFound
	}
	return t, nil
}

func (p *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	p.signOuts = append(p.signOuts, accessToken)
	return nil
}

func testCookies() Cookies {
	return Cookies{Name: "kingdojo_admin", MaxAge: 30 * 24 * time.Hour}
}

func requestWithCookies(access, refresh string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if access != "" {
		req.AddCookie(&http.Cookie{Name: "kingdojo_admin", Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: "kingdojo_admin_refresh", Value: refresh})
	}
	return req
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestUpdateSessionValidTokenKeepsCookies(t *testing.T) {
	p := &fakeProvider{users: map[string]Identity{"good": {Email: "a@x.com"}}}
	m := NewSessionManager(p, testCookies(), time.Second, zerolog.Nop())

	rec := httptest.NewRecorder()
	req, err := m.UpdateSession(rec, requestWithCookies("good", "r1"))
	require.NoError(t, err)

	token, ok := AccessTokenFromContext(req.Context())
	require.True(t, ok)
	assert.Equal(t, "good", token)
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, rec.Body.Len())
}

func TestUpdateSessionRefreshesExpiredAccess(t *testing.T) {
	p := &fakeProvider{
		users:     map[string]Identity{"fresh": {Email: "a@x.com"}},
		refreshes: map[string]Tokens{"r1": {AccessToken: "fresh", RefreshToken: "r2"}},
	}
	m := NewSessionManager(p, testCookies(), time.Second, zerolog.Nop())

	rec := httptest.NewRecorder()
	req, err := m.UpdateSession(rec, requestWithCookies("stale", "r1"))
	require.NoError(t, err)

	token, _ := AccessTokenFromContext(req.Context())
	assert.Equal(t, "fresh", token)

	access := cookieByName(rec, "kingdojo_admin")
	require.NotNil(t, access)
	assert.Equal(t, "fresh", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 30*24*60*60, access.MaxAge)
	refresh := cookieByName(rec, "kingdojo_admin_refresh")
	require.NotNil(t, refresh)
	assert.Equal(t, "r2", refresh.Value)

	id, err := m.CurrentUser(req)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)
}

func TestUpdateSessionRejectedRefreshClearsCookies(t *testing.T) {
	p := &fakeProvider{refreshErr: ErrRefreshReuse}
	m := NewSessionManager(p, testCookies(), time.Second, zerolog.Nop())

	rec := httptest.NewRecorder()
	req, err := m.UpdateSession(rec, requestWithCookies("stale", "old"))
	require.NoError(t, err)

	_, ok := AccessTokenFromContext(req.Context())
	assert.False(t, ok)
	cleared := cookieByName(rec, "kingdojo_admin")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestUpdateSessionOutageIsReturned(t *testing.T) {
	p := &fakeProvider{getErr: errors.New("connection refused")}
	m := NewSessionManager(p, testCookies(), time.Second, zerolog.Nop())

	rec := httptest.NewRecorder()
	orig := requestWithCookies("tok", "r1")
	req, err := m.UpdateSession(rec, orig)
	require.Error(t, err)
	assert.Same(t, orig, req)
	assert.Empty(t, rec.Result().Cookies())
}

func TestUpdateSessionTimeout(t *testing.T) {
	p := &fakeProvider{block: true}
	m := NewSessionManager(p, testCookies(), 20*time.Millisecond, zerolog.Nop())

	_, err := m.UpdateSession(httptest.NewRecorder(), requestWithCookies("tok", ""))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpdateSessionNoCookiesIsNoop(t *testing.T) {
	m := NewSessionManager(&fakeProvider{}, testCookies(), time.Second, zerolog.Nop())
	rec := httptest.NewRecorder()
	orig := httptest.NewRequest(http.MethodGet, "/", nil)
	req, err := m.UpdateSession(rec, orig)
	require.NoError(t, err)
	assert.Same(t, orig, req)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignInRefusesMisconfiguredCookies(t *testing.T) {
	m := NewSessionManager(&fakeProvider{}, Cookies{Name: "kingdojo_admin"}, time.Second, zerolog.Nop())
	err := m.SignIn(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/login", nil), "a@x.com", "password123")
	assert.ErrorIs(t, err, config.ErrMisconfigured)
}

func TestSignOutClearsAndRevokes(t *testing.T) {
	p := &fakeProvider{}
	m := NewSessionManager(p, testCookies(), time.Second, zerolog.Nop())
	rec := httptest.NewRecorder()

	require.NoError(t, m.SignOut(rec, requestWithCookies("tok", "r1")))
	assert.Equal(t, []string{"tok"}, p.signOuts)
	cleared := cookieByName(rec, "kingdojo_admin_refresh")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestCookiesSecureInProduction(t *testing.T) {
	c := NewCookies(config.AdminConfig{CookieName: "kd", CookieMaxAgeDays: 2}, true)
	rec := httptest.NewRecorder()
	c.Write(rec, Tokens{AccessToken: "a", RefreshToken: "b"})
	for _, ck := range rec.Result().Cookies() {
		assert.True(t, ck.Secure)
		assert.Equal(t, 2*24*60*60, ck.MaxAge)
	}
	assert.NoError(t, c.Validate())
}

func TestUpdateSessionParallelRefreshKeepsBothSignedIn(t *testing.T) {
	repo := newInMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "coach@kingdojo.kz", "password123")
	require.NoError(t, err)
	tokens, err := svc.SignInWithPassword(ctx, "coach@kingdojo.kz", "password123", "ua", "127.0.0.1")
	require.NoError(t, err)

	later := time.Now().Add(20 * time.Minute)
	svc.now = func() time.Time { return later }
	m := NewSessionManager(svc, testCookies(), time.Second, zerolog.Nop())

	// Two tabs fire with the same expired cookies before either sees the rotation.
	recA := httptest.NewRecorder()
	reqA, err := m.UpdateSession(recA, requestWithCookies(tokens.AccessToken, tokens.RefreshToken))
	require.NoError(t, err)
	recB := httptest.NewRecorder()
	reqB, err := m.UpdateSession(recB, requestWithCookies(tokens.AccessToken, tokens.RefreshToken))
	require.NoError(t, err)

	for name, rec := range map[string]*httptest.ResponseRecorder{"first": recA, "second": recB} {
		c := cookieByName(rec, "kingdojo_admin")
		require.NotNil(t, c, name)
		assert.NotEmpty(t, c.Value, name)
		assert.Positive(t, c.MaxAge, name)
	}

	idA, err := m.CurrentUser(reqA)
	require.NoError(t, err)
	assert.Equal(t, "coach@kingdojo.kz", idA.Email)
	idB, err := m.CurrentUser(reqB)
	require.NoError(t, err)
	assert.Equal(t, "coach@kingdojo.kz", idB.Email)

	// The rotated refresh token from the first tab keeps working.
	next, err := svc.Refresh(ctx, cookieByName(recA, "kingdojo_admin_refresh").Value)
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, next.AccessToken)
	require.NoError(t, err)
}
