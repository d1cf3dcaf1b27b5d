package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"kingdojo/internal/content"
)

type stubSettings struct {
	s   content.Settings
	err error
}

func (s stubSettings) Get(ctx context.Context) (content.Settings, error) { return s.s, s.err }

func (s stubSettings) Update(ctx context.Context, _ content.Settings) error { return nil }

type stubNews struct {
	items []content.News
	err   error
}

func (s stubNews) ListPublished(ctx context.Context) ([]content.News, error) { return s.items, s.err }

func (s stubNews) GetPublishedBySlug(ctx context.Context, slug string) (content.News, error) {
	if s.err != nil {
		return content.News{}, s.err
	}
	for _, n := range s.items {
		if n.Slug == slug {
			return n, nil
		}
	}
	return content.News{}, content.ErrNotFound
}

type stubProducts struct{ items []content.Product }

func (s stubProducts) ListActive(ctx context.Context) ([]content.Product, error) { return s.items, nil }

func (s stubProducts) GetActiveBySlug(ctx context.Context, slug string) (content.Product, error) {
	for _, p := range s.items {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.Product{}, content.ErrNotFound
}

type stubStudents struct{ items []content.Student }

func (s stubStudents) ListVisible(ctx context.Context) ([]content.Student, error) { return s.items, nil }

type stubSchedules struct{ items []content.Schedule }

func (s stubSchedules) ListActive(ctx context.Context) ([]content.Schedule, error) { return s.items, nil }

func serve(c Content, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	RegisterRoutes(r, c, zerolog.Nop())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHomePageRendersContacts(t *testing.T) {
	rec := serve(Content{Settings: stubSettings{s: content.Settings{
		Phone:       "+7 700 000 00 00",
		SocialLinks: content.SocialLinks{Telegram: "https://t.me/kingdojo"},
	}}}, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "+7 700 000 00 00")
	assert.Contains(t, rec.Body.String(), "https://t.me/kingdojo")
}

func TestHomePageSurvivesSettingsError(t *testing.T) {
	rec := serve(Content{Settings: stubSettings{err: errors.New("db down")}}, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewsListAndDetail(t *testing.T) {
	published := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	news := stubNews{items: []content.News{{
		Slug: "start-sezona", Title: "Старт сезона", Excerpt: "Набор открыт",
		Body: "**Ждём всех** <script>alert(1)</script>", Published: true, PublishedAt: &published,
	}}}

	rec := serve(Content{News: news}, "/news")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/news/start-sezona"`)
	assert.Contains(t, rec.Body.String(), "01.09.2025")

	rec = serve(Content{News: news}, "/news/start-sezona")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>Ждём всех</strong>")
	assert.NotContains(t, rec.Body.String(), "<script>alert")

	rec = serve(Content{News: news}, "/news/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppNewsRedirectsToNews(t *testing.T) {
	rec := serve(Content{News: stubNews{}}, "/app_news/start-sezona")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/news/start-sezona", rec.Header().Get("Location"))
}

func TestNewsStoreErrorIs500(t *testing.T) {
	rec := serve(Content{News: stubNews{err: errors.New("db down")}}, "/news")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProductPageBuildsOrderLinks(t *testing.T) {
	c := Content{
		Settings: stubSettings{s: content.Settings{SocialLinks: content.SocialLinks{
			WhatsApp: "+7 (700) 123-45-67",
			Telegram: "https://t.me/kingdojo",
		}}},
		Products: stubProducts{items: []content.Product{{Slug: "kimono", Title: "Кимоно", Price: 15000, Currency: "KZT", Active: true}}},
	}

	rec := serve(c, "/shop")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "15000 ₸")

	rec = serve(c, "/shop/kimono")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://wa.me/77001234567?text=")
	assert.Contains(t, rec.Body.String(), "https://t.me/kingdojo")
	assert.Contains(t, rec.Body.String(), "http://example.com/shop/kimono")
}

func TestProductPageWithoutMessengers(t *testing.T) {
	c := Content{Products: stubProducts{items: []content.Product{{Slug: "belt", Title: "Пояс"}}}}
	rec := serve(c, "/shop/belt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "wa.me")
	assert.Contains(t, rec.Body.String(), "Свяжитесь с нами")
}

func TestStudentsRatingShowsAwards(t *testing.T) {
	place := 1
	c := Content{Students: stubStudents{items: []content.Student{{
		DisplayName: "Айдар", Belt: "Синий", RatingPoints: 120, AttendedClasses: 9, TotalClasses: 10,
		Awards: []content.Award{{Medal: content.MedalGold, Title: "Кубок города", Place: &place}},
	}}}}
	rec := serve(c, "/students")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Айдар")
	assert.Contains(t, rec.Body.String(), "90%")
	assert.Contains(t, rec.Body.String(), "Кубок города")
}

func TestScheduleListsGroups(t *testing.T) {
	c := Content{Schedules: stubSchedules{items: []content.Schedule{{
		Title: "Зал на Абая", Days: "Пн, Ср, Пт",
		Groups: []content.ScheduleGroup{{Name: "Дети", Time: "17:00"}},
	}}}}
	rec := serve(c, "/schedule")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "17:00")
}

func TestUnconfiguredSectionsAre404(t *testing.T) {
	rec := serve(Content{}, "/gallery")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
