package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
	"kingdojo/internal/config"
	"kingdojo/internal/content"
	"kingdojo/internal/site"
)

const cookieName = "kd_session"

type fakeProvider struct {
	mu       sync.Mutex
	access   map[string]string
	refresh  map[string]string
	down     bool
	getCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{access: map[string]string{}, refresh: map[string]string{}}
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password, userAgent, ip string) (auth.Tokens, error) {
	return auth.Tokens{}, auth.ErrInvalidCredentials
}

func (p *fakeProvider) GetUser(ctx context.Context, accessToken string) (auth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls++
	if p.down {
		return auth.Identity{}, errors.New("auth backend unavailable")
	}
	email, ok := p.access[accessToken]
	if !ok {
		return auth.Identity{}, auth.ErrSessionNotFound
	}
	return auth.Identity{Email: email}, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return auth.Tokens{}, errors.New("auth backend unavailable")
	}
	email, ok := p.refresh[refreshToken]
	if !ok {
		return auth.Tokens{}, auth.ErrSessionNotFound
	}
	delete(p.refresh, refreshToken)
	p.access["rotated-"+email] = email
	p.refresh["rotated-ref-"+email] = email
	return auth.Tokens{AccessToken: "rotated-" + email, RefreshToken: "rotated-ref-" + email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (p *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.access, accessToken)
	return nil
}

func (p *fakeProvider) getUserCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getCalls
}

type memAllowlist struct {
	mu      sync.Mutex
	emails  map[string]bool
	lookups int
}

func (m *memAllowlist) Lookup(ctx context.Context, email string) admin.LookupResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if !m.emails[email] {
		return admin.NotFound{Email: email}
	}
	return admin.Found{Entry: admin.Entry{Email: email}}
}

func (m *memAllowlist) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

type memSettings struct{}

func (memSettings) Get(ctx context.Context) (content.Settings, error) {
	return content.Settings{Phone: "+7 700 000 00 00"}, nil
}

func (memSettings) Update(ctx context.Context, s content.Settings) error { return nil }

type siteFixture struct {
	server    *HTTPServer
	provider  *fakeProvider
	allowlist *memAllowlist
}

func newSiteFixture(t *testing.T) *siteFixture {
	t.Helper()
	f := &siteFixture{
		provider:  newFakeProvider(),
		allowlist: &memAllowlist{emails: map[string]bool{"a@x.com": true}},
	}
	f.provider.access["tok-a"] = "a@x.com"
	f.provider.access["tok-b"] = "b@x.com"
	f.provider.refresh["ref-a"] = "a@x.com"

	logger := zerolog.Nop()
	sessions := auth.NewSessionManager(f.provider, auth.Cookies{Name: cookieName, MaxAge: time.Hour}, time.Second, logger)
	gate := admin.NewGate(sessions, f.allowlist, time.Second, logger)
	settings := memSettings{}

	f.server = NewSiteServer(config.ServiceConfig{ServiceName: "site"}, logger, SiteDeps{
		Sessions: sessions,
		Gate:     gate,
		Admin:    admin.NewHandler(sessions, settings, admin.Stores{}, nil, 1, logger),
		Content:  site.Content{Settings: settings},
		Static: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		EdgeExclude: regexp.MustCompile(`^/static/`),
	})
	return f
}

func (f *siteFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Router.ServeHTTP(rec, req)
	return rec
}

func withSession(req *http.Request, access, refresh string) *http.Request {
	if access != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: cookieName + "_refresh", Value: refresh})
	}
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSiteServesHealthAndPublicPages(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "+7 700 000 00 00")
}

func TestAdminWithoutCookieRedirectsAtEdge(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Zero(t, f.allowlist.count())
}

func TestAdminWithCookieWhileProviderDownRedirectsToLogin(t *testing.T) {
	f := newSiteFixture(t)
	f.provider.down = true

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), "tok-a", "ref-a"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.Zero(t, f.allowlist.count())
	assert.Nil(t, responseCookie(rec, cookieName), "an outage must not clear the session")
}

func TestAllowlistedAdminReachesDashboard(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), "tok-a", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
}

func TestExpiredAccessIsRefreshedBeforeTheGate(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), "stale", "ref-a"))
	assert.Equal(t, http.StatusOK, rec.Code)
	ck := responseCookie(rec, cookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "rotated-a@x.com", ck.Value)
}

func TestUnknownPathStillRefreshesSession(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/no-such-page", nil), "stale", "ref-a"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Страница не найдена")
	ck := responseCookie(rec, cookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "rotated-a@x.com", ck.Value)
}

func TestStaticAssetsSkipSessionRefresh(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/static/site.css", nil), "tok-a", "ref-a"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, f.provider.getUserCalls())
}

func TestDeniedUserCanStillSignOut(t *testing.T) {
	f := newSiteFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), "tok-b", ""))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/signout"`)

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/signout", nil), "tok-b", "")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec = f.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	ck := responseCookie(rec, cookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "", ck.Value)
	assert.Less(t, ck.MaxAge, 0)
}

func TestCrossOriginPostStopsBeforeTheGate(t *testing.T) {
	f := newSiteFixture(t)

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/settings", strings.NewReader("phone=1")), "tok-a", "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
	assert.Zero(t, f.allowlist.count())

	req = withSession(httptest.NewRequest(http.MethodPost, "/admin/signout", nil), "tok-a", "")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec = f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCrossOriginPostWithoutCookieIsRedirectedAtEdge(t *testing.T) {
	f := newSiteFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/settings", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := f.do(req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}
