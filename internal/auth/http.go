package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"kingdojo/internal/config"
	"kingdojo/internal/observability"
)

// RegisterAPIRoutes mounts the JSON login/logout endpoints under /api/admin.
// API routes answer with structured errors, never redirects.
func RegisterAPIRoutes(r chi.Router, sessions *SessionManager, logger zerolog.Logger) {
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeJSON(w, map[string]string{"message": "invalid payload"}, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
			writeJSON(w, map[string]string{"message": "email and password required"}, http.StatusBadRequest)
			return
		}
		err := sessions.SignIn(w, req, payload.Email, payload.Password)
		switch {
		case err == nil:
			observability.LoginAttempts.WithLabelValues("ok").Inc()
			writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
		case errors.Is(err, config.ErrMisconfigured):
			logger.Error().Err(err).Msg("admin login misconfigured")
			writeJSON(w, map[string]string{"message": "Server configuration error"}, http.StatusInternalServerError)
		case errors.Is(err, ErrInvalidCredentials):
			observability.LoginAttempts.WithLabelValues("invalid").Inc()
			writeJSON(w, map[string]string{"message": "invalid email or password"}, http.StatusUnauthorized)
		default:
			observability.LoginAttempts.WithLabelValues("error").Inc()
			logger.Error().Err(err).Msg("admin login failed")
			writeJSON(w, map[string]string{"message": "Internal server error"}, http.StatusInternalServerError)
		}
	})

	r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
		if err := sessions.SignOut(w, req); err != nil {
			logger.Warn().Err(err).Msg("admin logout failed")
		}
		writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func remoteIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		candidate := strings.TrimSpace(parts[0])
		if candidate != "" {
			return candidate
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
