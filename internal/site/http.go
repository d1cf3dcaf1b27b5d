// Package site serves the public club pages.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	g "maragu.dev/gomponents"

	"kingdojo/internal/content"
	"kingdojo/internal/views"
)

type NewsSource interface {
	ListPublished(ctx context.Context) ([]content.News, error)
	GetPublishedBySlug(ctx context.Context, slug string) (content.News, error)
}

type AchievementSource interface {
	ListPublished(ctx context.Context) ([]content.Achievement, error)
	GetPublishedBySlug(ctx context.Context, slug string) (content.Achievement, error)
}

type ProductSource interface {
	ListActive(ctx context.Context) ([]content.Product, error)
	GetActiveBySlug(ctx context.Context, slug string) (content.Product, error)
}

type ScheduleSource interface {
	ListActive(ctx context.Context) ([]content.Schedule, error)
}

type StudentSource interface {
	ListVisible(ctx context.Context) ([]content.Student, error)
}

type CoachSource interface {
	List(ctx context.Context) ([]content.Coach, error)
}

type GallerySource interface {
	List(ctx context.Context) ([]content.GalleryItem, error)
}

// Content is the read side behind the public pages. Sections left nil are
// not mounted.
type Content struct {
	Settings     content.SettingsStore
	News         NewsSource
	Achievements AchievementSource
	Products     ProductSource
	Schedules    ScheduleSource
	Students     StudentSource
	Coaches      CoachSource
	Gallery      GallerySource
}

type handler struct {
	c      Content
	logger zerolog.Logger
}

// RegisterRoutes mounts the home page and every configured content section.
func RegisterRoutes(r chi.Router, c Content, logger zerolog.Logger) {
	h := &handler{c: c, logger: logger}
	r.Get("/", h.home)
	if c.News != nil {
		r.Get("/news", listPage(h, "news", c.News.ListPublished, views.NewsListPage))
		r.Get("/news/{slug}", detailPage(h, "news", c.News.GetPublishedBySlug, views.NewsPage))
		// Articles from the mobile app feed share the news table.
		r.Get("/app_news/{slug}", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/news/"+chi.URLParam(req, "slug"), http.StatusMovedPermanently)
		})
	}
	if c.Achievements != nil {
		r.Get("/achievements", listPage(h, "achievements", c.Achievements.ListPublished, views.AchievementsPage))
		r.Get("/achievements/{slug}", detailPage(h, "achievements", c.Achievements.GetPublishedBySlug, views.AchievementPage))
	}
	if c.Products != nil {
		r.Get("/shop", listPage(h, "shop", c.Products.ListActive, views.ShopPage))
		r.Get("/shop/{slug}", h.product)
	}
	if c.Schedules != nil {
		r.Get("/schedule", listPage(h, "schedule", c.Schedules.ListActive, views.SchedulePage))
	}
	if c.Students != nil {
		r.Get("/students", listPage(h, "students", c.Students.ListVisible, views.StudentsPage))
	}
	if c.Coaches != nil {
		r.Get("/coaches", listPage(h, "coaches", c.Coaches.List, views.CoachesPage))
	}
	if c.Gallery != nil {
		r.Get("/gallery", listPage(h, "gallery", c.Gallery.List, views.GalleryPage))
	}
}

// NotFound renders the public 404 page for paths no route matches.
func NotFound(logger zerolog.Logger) http.HandlerFunc {
	h := &handler{logger: logger}
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusNotFound, views.NotFoundPage())
	}
}

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings(r.Context())
	if err != nil {
		// The page still renders without contacts.
		h.logger.Error().Err(err).Msg("load site settings")
	}
	h.render(w, http.StatusOK, views.HomePage(s))
}

func (h *handler) settings(ctx context.Context) (content.Settings, error) {
	if h.c.Settings == nil {
		return content.Settings{}, nil
	}
	return h.c.Settings.Get(ctx)
}

func (h *handler) product(w http.ResponseWriter, r *http.Request) {
	p, err := h.c.Products.GetActiveBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.failed(w, "shop", err)
		return
	}
	s, err := h.settings(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("load site settings for order links")
	}
	msg := p.OrderMessage(pageURL(r))
	h.render(w, http.StatusOK, views.ProductPage(p, content.WhatsAppLink(s.SocialLinks.WhatsApp, msg), s.SocialLinks.Telegram, msg))
}

func listPage[T any](h *handler, section string, load func(context.Context) ([]T, error), view func([]T) g.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := load(r.Context())
		if err != nil {
			h.failed(w, section, err)
			return
		}
		h.render(w, http.StatusOK, view(items))
	}
}

func detailPage[T any](h *handler, section string, load func(context.Context, string) (T, error), view func(T) g.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := load(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.failed(w, section, err)
			return
		}
		h.render(w, http.StatusOK, view(item))
	}
}

func (h *handler) failed(w http.ResponseWriter, section string, err error) {
	if errors.Is(err, content.ErrNotFound) {
		h.render(w, http.StatusNotFound, views.NotFoundPage())
		return
	}
	h.logger.Error().Err(err).Str("section", section).Msg("load public content")
	h.render(w, http.StatusInternalServerError, views.UnavailablePage())
}

func (h *handler) render(w http.ResponseWriter, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := node.Render(w); err != nil {
		h.logger.Error().Err(err).Msg("render public page")
	}
}

func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
