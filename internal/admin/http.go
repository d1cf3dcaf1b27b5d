package admin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	g "maragu.dev/gomponents"

	"kingdojo/internal/auth"
	"kingdojo/internal/config"
	"kingdojo/internal/content"
	"kingdojo/internal/media"
	"kingdojo/internal/observability"
	"kingdojo/internal/views"
)

const (
	LoginPath   = "/admin/login"
	SignOutPath = "/admin/signout"
	HomePath    = "/admin"
)

// Uploader stores an uploaded image and returns where it is served from.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (media.Upload, error)
}

// Handler serves the admin HTML pages.
type Handler struct {
	sessions  *auth.SessionManager
	settings  content.SettingsStore
	stores    Stores
	uploader  Uploader
	maxUpload int64
	logger    zerolog.Logger
}

func NewHandler(sessions *auth.SessionManager, settings content.SettingsStore, stores Stores, uploader Uploader, maxUploadMB int64, logger zerolog.Logger) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Handler{
		sessions:  sessions,
		settings:  settings,
		stores:    stores,
		uploader:  uploader,
		maxUpload: maxUploadMB << 20,
		logger:    logger,
	}
}

// RegisterRoutes mounts the admin area under /admin. Login and sign-out stay
// outside the gate so a denied user can switch accounts. loginMW wraps only
// the credential POST (rate limiting).
func RegisterRoutes(r chi.Router, h *Handler, gate *Gate, loginMW ...func(http.Handler) http.Handler) {
	r.Get("/login", h.loginForm)
	r.With(loginMW...).Post("/login", h.login)
	r.Post("/signout", h.signOut)

	r.Group(func(r chi.Router) {
		r.Use(gate.Middleware)
		r.Get("/", h.dashboard)
		r.Get("/settings", h.settingsForm)
		r.Post("/settings", h.saveSettings)
		r.Get("/media", h.mediaForm)
		r.Post("/media", h.upload)
		h.mountContent(r)
	})
}

// mountContent registers the CRUD screens for every configured store.
func (h *Handler) mountContent(r chi.Router) {
	if h.stores.News != nil {
		mountResource(r, h, newsResource(h.stores.News))
	}
	if h.stores.Achievements != nil {
		mountResource(r, h, achievementResource(h.stores.Achievements))
	}
	if h.stores.Products != nil {
		mountResource(r, h, productResource(h.stores.Products))
	}
	if h.stores.Schedules != nil {
		mountResource(r, h, scheduleResource(h.stores.Schedules))
	}
	if h.stores.Students != nil {
		mountResource(r, h, studentResource(h, h.stores.Students))
	}
	if h.stores.Coaches != nil {
		mountResource(r, h, coachResource(h.stores.Coaches))
	}
	if h.stores.Gallery != nil {
		mountResource(r, h, galleryResource(h.stores.Gallery))
	}
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if id, err := h.sessions.CurrentUser(r); err == nil && id.Email != "" {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, views.LoginPage("", ""))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, views.LoginPage("", "Некорректный запрос"))
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		h.render(w, http.StatusBadRequest, views.LoginPage(email, "Введите email и пароль"))
		return
	}

	err := h.sessions.SignIn(w, r, email, password)
	switch {
	case err == nil:
		observability.LoginAttempts.WithLabelValues("ok").Inc()
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	case errors.Is(err, config.ErrMisconfigured):
		h.logger.Error().Err(err).Msg("admin login misconfigured")
		h.render(w, http.StatusInternalServerError, views.LoginPage(email, "Server configuration error"))
	case errors.Is(err, auth.ErrInvalidCredentials):
		observability.LoginAttempts.WithLabelValues("invalid").Inc()
		h.render(w, http.StatusUnauthorized, views.LoginPage(email, "Неверный email или пароль"))
	default:
		observability.LoginAttempts.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Msg("admin login failed")
		h.render(w, http.StatusInternalServerError, views.LoginPage(email, "Сервис входа недоступен, попробуйте позже"))
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.Warn().Err(err).Msg("admin sign-out failed")
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load settings")
	}
	h.render(w, http.StatusOK, views.Dashboard(identityEmail(r), s))
}

func (h *Handler) settingsForm(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load settings")
		h.render(w, http.StatusInternalServerError, views.SettingsPage(identityEmail(r), s, "", "Не удалось загрузить настройки"))
		return
	}
	h.render(w, http.StatusOK, views.SettingsPage(identityEmail(r), s, "", ""))
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	f := func(name string) string { return strings.TrimSpace(r.PostForm.Get(name)) }
	s := content.Settings{
		Phone:   f("phone"),
		Address: f("address"),
		SocialLinks: content.SocialLinks{
			Instagram: f("instagram"),
			Telegram:  f("telegram"),
			YouTube:   f("youtube"),
			TikTok:    f("tiktok"),
			WhatsApp:  f("whatsapp"),
		},
	}
	if err := h.settings.Update(r.Context(), s); err != nil {
		h.logger.Error().Err(err).Msg("save settings")
		h.render(w, http.StatusInternalServerError, views.SettingsPage(identityEmail(r), s, "", "Не удалось сохранить настройки"))
		return
	}
	h.logger.Info().Str("email", identityEmail(r)).Msg("site settings updated")
	h.render(w, http.StatusOK, views.SettingsPage(identityEmail(r), s, "Настройки сохранены", ""))
}

func (h *Handler) mediaForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.MediaPage(identityEmail(r), "", ""))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	email := identityEmail(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "Выберите файл"
		if errors.As(err, &tooLarge) {
			msg = "Файл слишком большой"
		}
		h.render(w, http.StatusBadRequest, views.MediaPage(email, "", msg))
		return
	}
	defer file.Close()

	up, err := h.uploader.Upload(r.Context(), file)
	switch {
	case err == nil:
		h.logger.Info().Str("email", email).Str("key", up.Key).Int64("size", up.Size).Msg("media uploaded")
		h.render(w, http.StatusOK, views.MediaPage(email, up.URL, ""))
	case errors.Is(err, media.ErrUnsupportedType):
		h.render(w, http.StatusUnsupportedMediaType, views.MediaPage(email, "", "Поддерживаются JPEG, PNG, GIF и WebP"))
	default:
		h.logger.Error().Err(err).Msg("media upload failed")
		h.render(w, http.StatusInternalServerError, views.MediaPage(email, "", "Не удалось загрузить файл"))
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := node.Render(w); err != nil {
		h.logger.Error().Err(err).Msg("render admin page")
	}
}

func identityEmail(r *http.Request) string {
	id, _ := auth.IdentityFromContext(r.Context())
	return id.Email
}
