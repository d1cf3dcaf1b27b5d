package auth

import (
	"fmt"
	"net/http"
	"time"

	"kingdojo/internal/config"
)

// Cookies writes and reads the Session Credential cookies.
// The access token lives in Name, the refresh token in Name+"_refresh".
type Cookies struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// NewCookies derives cookie settings from admin config.
func NewCookies(cfg config.AdminConfig, production bool) Cookies {
	return Cookies{
		Name:   cfg.CookieName,
		MaxAge: cfg.SessionTTL(),
		Secure: production,
	}
}

// Validate rejects settings under which no credential may be issued.
func (c Cookies) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: admin cookie name is empty", config.ErrMisconfigured)
	}
	if c.MaxAge <= 0 {
		return fmt.Errorf("%w: admin cookie max age must be positive", config.ErrMisconfigured)
	}
	return nil
}

// RefreshName is the refresh token cookie name.
func (c Cookies) RefreshName() string {
	return c.Name + "_refresh"
}

// Write sets both cookies on the response.
func (c Cookies) Write(w http.ResponseWriter, t Tokens) {
	http.SetCookie(w, c.cookie(c.Name, t.AccessToken, int(c.MaxAge.Seconds())))
	http.SetCookie(w, c.cookie(c.RefreshName(), t.RefreshToken, int(c.MaxAge.Seconds())))
}

// Clear expires both cookies.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.Name, "", -1))
	http.SetCookie(w, c.cookie(c.RefreshName(), "", -1))
}

// SessionToken returns the access token cookie value, if any.
func (c Cookies) SessionToken(r *http.Request) string {
	return cookieValue(r, c.Name)
}

// RefreshToken returns the refresh token cookie value, if any.
func (c Cookies) RefreshToken(r *http.Request) string {
	return cookieValue(r, c.RefreshName())
}

func (c Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
