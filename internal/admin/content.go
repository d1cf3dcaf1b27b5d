package admin

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"

	"kingdojo/internal/content"
	"kingdojo/internal/views"
)

// StudentStore edits students and their awards.
type StudentStore interface {
	content.Store[content.Student]
	content.AwardStore
}

// Stores bundles the repositories behind the admin content screens.
type Stores struct {
	News         content.Store[content.News]
	Achievements content.Store[content.Achievement]
	Products     content.Store[content.Product]
	Schedules    content.Store[content.Schedule]
	Students     StudentStore
	Coaches      content.Store[content.Coach]
	Gallery      content.Store[content.GalleryItem]
}

// resource wires one content kind to the list, create, edit and delete screens.
type resource[T any] struct {
	views.Resource
	store  content.Store[T]
	blank  func() T
	id     func(T) int64
	setID  func(*T, int64)
	row    func(T) []string
	fields func(T) []views.Field
	decode func(form url.Values, item *T) error
	extra  func(path string, item T) g.Node
	routes func(r chi.Router)
}

func mountResource[T any](r chi.Router, h *Handler, res resource[T]) {
	r.Route(strings.TrimPrefix(res.Base, HomePath), func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			listResource(h, w, req, res, http.StatusOK, "")
		})
		r.Get("/new", func(w http.ResponseWriter, req *http.Request) {
			var item T
			if res.blank != nil {
				item = res.blank()
			}
			h.render(w, http.StatusOK, views.ResourceForm(identityEmail(req), res.Resource, res.Base, res.fields(item), ""))
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var item T
			if !decodeResource(h, w, req, res, res.Base, &item) {
				return
			}
			id, err := res.store.Create(req.Context(), item)
			if err != nil {
				writeFailed(h, w, req, res, res.Base, item, err)
				return
			}
			h.logger.Info().Str("email", identityEmail(req)).Str("section", res.Base).Int64("id", id).Msg("content created")
			http.Redirect(w, req, res.Base+"?saved=1", http.StatusSeeOther)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := pathID(req, "id")
			if !ok {
				http.NotFound(w, req)
				return
			}
			item, err := res.store.Get(req.Context(), id)
			if err != nil {
				loadFailed(h, w, req, res, err)
				return
			}
			renderEdit(h, w, req, res, http.StatusOK, item, "")
		})
		r.Post("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, ok := pathID(req, "id")
			if !ok {
				http.NotFound(w, req)
				return
			}
			var item T
			res.setID(&item, id)
			if !decodeResource(h, w, req, res, itemPath(res.Base, id), &item) {
				return
			}
			if err := res.store.Update(req.Context(), item); err != nil {
				writeFailed(h, w, req, res, itemPath(res.Base, id), item, err)
				return
			}
			h.logger.Info().Str("email", identityEmail(req)).Str("section", res.Base).Int64("id", id).Msg("content updated")
			http.Redirect(w, req, res.Base+"?saved=1", http.StatusSeeOther)
		})
		r.Post("/{id}/delete", func(w http.ResponseWriter, req *http.Request) {
			id, ok := pathID(req, "id")
			if !ok {
				http.NotFound(w, req)
				return
			}
			err := res.store.Delete(req.Context(), id)
			if err != nil && !errors.Is(err, content.ErrNotFound) {
				h.logger.Error().Err(err).Str("section", res.Base).Int64("id", id).Msg("delete content")
				listResource(h, w, req, res, http.StatusInternalServerError, "Не удалось удалить запись")
				return
			}
			h.logger.Info().Str("email", identityEmail(req)).Str("section", res.Base).Int64("id", id).Msg("content deleted")
			http.Redirect(w, req, res.Base+"?deleted=1", http.StatusSeeOther)
		})
		if res.routes != nil {
			res.routes(r)
		}
	})
}

func listResource[T any](h *Handler, w http.ResponseWriter, r *http.Request, res resource[T], status int, errMsg string) {
	items, err := res.store.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("section", res.Base).Msg("list content")
		status, errMsg = http.StatusInternalServerError, "Не удалось загрузить записи"
	}
	rows := make([]views.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, views.Row{ID: res.id(item), Cells: res.row(item)})
	}
	notice := ""
	switch {
	case r.URL.Query().Has("saved"):
		notice = "Сохранено"
	case r.URL.Query().Has("deleted"):
		notice = "Удалено"
	}
	h.render(w, status, views.ResourceList(identityEmail(r), res.Resource, rows, notice, errMsg))
}

func renderEdit[T any](h *Handler, w http.ResponseWriter, r *http.Request, res resource[T], status int, item T, errMsg string) {
	path := itemPath(res.Base, res.id(item))
	var extra []g.Node
	if res.extra != nil {
		extra = append(extra, res.extra(path, item))
	}
	h.render(w, status, views.ResourceForm(identityEmail(r), res.Resource, path, res.fields(item), errMsg, extra...))
}

// decodeResource parses the form into item. On failure it re-renders the form
// with the submitted values and reports false.
func decodeResource[T any](h *Handler, w http.ResponseWriter, r *http.Request, res resource[T], action string, item *T) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if err := res.decode(r.PostForm, item); err != nil {
		h.render(w, http.StatusUnprocessableEntity, views.ResourceForm(identityEmail(r), res.Resource, action, res.fields(*item), validationMessage(err)))
		return false
	}
	return true
}

func writeFailed[T any](h *Handler, w http.ResponseWriter, r *http.Request, res resource[T], action string, item T, err error) {
	status, msg := http.StatusInternalServerError, "Не удалось сохранить запись"
	switch {
	case errors.Is(err, content.ErrSlugTaken):
		status, msg = http.StatusConflict, "Такой адрес (slug) уже используется"
	case errors.Is(err, content.ErrNotFound):
		status, msg = http.StatusNotFound, "Запись не найдена"
	default:
		h.logger.Error().Err(err).Str("section", res.Base).Msg("save content")
	}
	h.render(w, status, views.ResourceForm(identityEmail(r), res.Resource, action, res.fields(item), msg))
}

func loadFailed[T any](h *Handler, w http.ResponseWriter, r *http.Request, res resource[T], err error) {
	if errors.Is(err, content.ErrNotFound) {
		listResource(h, w, r, res, http.StatusNotFound, "Запись не найдена")
		return
	}
	h.logger.Error().Err(err).Str("section", res.Base).Msg("load content")
	listResource(h, w, r, res, http.StatusInternalServerError, "Не удалось загрузить запись")
}

func validationMessage(err error) string {
	if errors.Is(err, content.ErrInvalid) {
		return "Проверьте форму: " + strings.TrimPrefix(err.Error(), content.ErrInvalid.Error()+": ")
	}
	return "Проверьте форму: " + err.Error()
}

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// form helpers

func text(form url.Values, name string) string {
	return strings.TrimSpace(form.Get(name))
}

func checkbox(form url.Values, name string) bool {
	return form.Get(name) != ""
}

func intField(form url.Values, name string) (int, error) {
	v := text(form, name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: ожидается целое число", name)
	}
	return n, nil
}

func floatField(form url.Values, name string) (float64, error) {
	v := strings.ReplaceAll(text(form, name), ",", ".")
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: ожидается число", name)
	}
	return f, nil
}

func dateField(form url.Values, name string) (*time.Time, error) {
	v := text(form, name)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("%s: ожидается дата ГГГГ-ММ-ДД", name)
	}
	return &d, nil
}
