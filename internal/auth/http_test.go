package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIRouter(cookies Cookies) *chi.Mux {
	m := NewSessionManager(&fakeProvider{}, cookies, time.Second, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api/admin", func(ar chi.Router) {
		RegisterAPIRoutes(ar, m, zerolog.Nop())
	})
	return r
}

func TestAPILogin(t *testing.T) {
	r := newAPIRouter(testCookies())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@x.com","password":"password123"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.NotNil(t, cookieByName(rec, "kingdojo_admin"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@x.com","password":"wrong-pass"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieByName(rec, "kingdojo_admin"))
}

func TestAPILoginMisconfigured(t *testing.T) {
	r := newAPIRouter(Cookies{Name: ""})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@x.com","password":"password123"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server configuration error")
	assert.Empty(t, rec.Result().Cookies())
}

func TestAPILoginBadPayload(t *testing.T) {
	r := newAPIRouter(testCookies())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPILogout(t *testing.T) {
	r := newAPIRouter(testCookies())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithCookiesAt(http.MethodPost, "/api/admin/logout", "tok"))
	assert.Equal(t, http.StatusOK, rec.Code)
	c := cookieByName(rec, "kingdojo_admin")
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func requestWithCookiesAt(method, target, access string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(&http.Cookie{Name: "kingdojo_admin", Value: access})
	return req
}
