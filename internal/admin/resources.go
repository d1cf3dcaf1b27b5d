package admin

import (
	"errors"
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

func newsResource(store content.Store[content.News]) resource[content.News] {
	return resource[content.News]{
		Resource: views.Resource{Base: "/admin/news", Title: "Новости", Singular: "Новость", Columns: []string{"Заголовок", "Адрес", "Статус"}},
		store:    store,
		id:       func(n content.News) int64 { return n.ID },
		setID:    func(n *content.News, id int64) { n.ID = id },
		row: func(n content.News) []string {
			return []string{n.Title, "/news/" + n.Slug, publishedLabel(n.Published)}
		},
		fields: func(n content.News) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Заголовок", Value: n.Title, Required: true},
				{Name: "slug", Label: "Адрес (slug)", Value: n.Slug, Hint: "Пусто: из заголовка"},
				{Name: "excerpt", Label: "Краткое описание", Value: n.Excerpt},
				{Name: "body", Label: "Текст (Markdown)", Kind: views.FieldTextarea, Value: n.Body},
				{Name: "cover_image", Label: "Обложка (URL)", Value: n.CoverImage},
				{Name: "is_published", Label: "Опубликовано", Kind: views.FieldCheckbox, Checked: n.Published},
			}
		},
		decode: func(f url.Values, n *content.News) error {
			n.Title = text(f, "title")
			n.Slug = text(f, "slug")
			n.Excerpt = text(f, "excerpt")
			n.Body = f.Get("body")
			n.CoverImage = text(f, "cover_image")
			n.Published = checkbox(f, "is_published")
			return n.Prepare()
		},
	}
}

func achievementResource(store content.Store[content.Achievement]) resource[content.Achievement] {
	return resource[content.Achievement]{
		Resource: views.Resource{Base: "/admin/achievements", Title: "Достижения", Singular: "Достижение", Columns: []string{"Название", "Дата", "Статус"}},
		store:    store,
		id:       func(a content.Achievement) int64 { return a.ID },
		setID:    func(a *content.Achievement, id int64) { a.ID = id },
		row: func(a content.Achievement) []string {
			return []string{a.Title, dateValue(a.Date), publishedLabel(a.Published)}
		},
		fields: func(a content.Achievement) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Название", Value: a.Title, Required: true},
				{Name: "slug", Label: "Адрес (slug)", Value: a.Slug, Hint: "Пусто: из названия"},
				{Name: "date", Label: "Дата", Kind: views.FieldDate, Value: dateValue(a.Date)},
				{Name: "description", Label: "Описание (Markdown)", Kind: views.FieldTextarea, Value: a.Description},
				{Name: "cover_image", Label: "Обложка (URL)", Value: a.CoverImage},
				{Name: "is_published", Label: "Опубликовано", Kind: views.FieldCheckbox, Checked: a.Published},
			}
		},
		decode: func(f url.Values, a *content.Achievement) error {
			a.Title = text(f, "title")
			a.Slug = text(f, "slug")
			a.Description = f.Get("description")
			a.CoverImage = text(f, "cover_image")
			a.Published = checkbox(f, "is_published")
			date, err := dateField(f, "date")
			if err != nil {
				return err
			}
			a.Date = date
			return a.Prepare()
		},
	}
}

func productResource(store content.Store[content.Product]) resource[content.Product] {
	return resource[content.Product]{
		Resource: views.Resource{Base: "/admin/products", Title: "Магазин", Singular: "Товар", Columns: []string{"Товар", "Цена", "Категория", "В продаже"}},
		store:    store,
		blank:    func() content.Product { return content.Product{Currency: "KZT", Active: true} },
		id:       func(p content.Product) int64 { return p.ID },
		setID:    func(p *content.Product, id int64) { p.ID = id },
		row: func(p content.Product) []string {
			return []string{p.Title, p.PriceLabel(), p.Category, yesNo(p.Active)}
		},
		fields: func(p content.Product) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Название", Value: p.Title, Required: true},
				{Name: "slug", Label: "Адрес (slug)", Value: p.Slug, Hint: "Пусто: из названия"},
				{Name: "price", Label: "Цена", Kind: views.FieldNumber, Value: strconv.FormatFloat(p.Price, 'f', -1, 64)},
				{Name: "currency", Label: "Валюта", Value: p.Currency, Hint: "По умолчанию KZT"},
				{Name: "category", Label: "Категория", Value: p.Category},
				{Name: "sizes", Label: "Размеры", Value: strings.Join(p.Sizes, ", "), Hint: "Через запятую"},
				{Name: "description", Label: "Описание", Kind: views.FieldTextarea, Value: p.Description},
				{Name: "image_url", Label: "Фото (URL)", Value: p.ImageURL},
				{Name: "is_active", Label: "В продаже", Kind: views.FieldCheckbox, Checked: p.Active},
			}
		},
		decode: func(f url.Values, p *content.Product) error {
			p.Title = text(f, "title")
			p.Slug = text(f, "slug")
			p.Currency = text(f, "currency")
			p.Category = text(f, "category")
			p.Sizes = strings.Split(text(f, "sizes"), ",")
			p.Description = f.Get("description")
			p.ImageURL = text(f, "image_url")
			p.Active = checkbox(f, "is_active")
			price, err := floatField(f, "price")
			if err != nil {
				return err
			}
			p.Price = price
			return p.Prepare()
		},
	}
}

func scheduleResource(store content.Store[content.Schedule]) resource[content.Schedule] {
	return resource[content.Schedule]{
		Resource: views.Resource{Base: "/admin/schedules", Title: "Расписание", Singular: "Расписание группы", Columns: []string{"Название", "Дни", "Групп", "Порядок", "Показывать"}},
		store:    store,
		blank:    func() content.Schedule { return content.Schedule{Active: true} },
		id:       func(s content.Schedule) int64 { return s.ID },
		setID:    func(s *content.Schedule, id int64) { s.ID = id },
		row: func(s content.Schedule) []string {
			return []string{s.Title, s.Days, strconv.Itoa(len(s.Groups)), strconv.Itoa(s.DisplayOrder), yesNo(s.Active)}
		},
		fields: func(s content.Schedule) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Название", Value: s.Title, Required: true},
				{Name: "subtitle", Label: "Подзаголовок", Value: s.Subtitle},
				{Name: "days", Label: "Дни", Value: s.Days},
				{Name: "groups", Label: "Группы", Kind: views.FieldTextarea, Value: content.FormatGroups(s.Groups), Hint: "По строке на группу: название | время"},
				{Name: "display_order", Label: "Порядок", Kind: views.FieldNumber, Value: strconv.Itoa(s.DisplayOrder)},
				{Name: "is_active", Label: "Показывать", Kind: views.FieldCheckbox, Checked: s.Active},
			}
		},
		decode: func(f url.Values, s *content.Schedule) error {
			s.Title = text(f, "title")
			s.Subtitle = text(f, "subtitle")
			s.Days = text(f, "days")
			s.Groups = content.ParseGroups(f.Get("groups"))
			s.Active = checkbox(f, "is_active")
			order, err := intField(f, "display_order")
			if err != nil {
				return err
			}
			s.DisplayOrder = order
			return s.Prepare()
		},
	}
}

func studentResource(h *Handler, store StudentStore) resource[content.Student] {
	res := resource[content.Student]{
		Resource: views.Resource{Base: "/admin/students", Title: "Ученики", Singular: "Ученик", Columns: []string{"Имя", "Пояс", "Группа", "Рейтинг", "Посещаемость"}},
		store:    store,
		blank:    func() content.Student { return content.Student{PublicVisible: true} },
		id:       func(s content.Student) int64 { return s.ID },
		setID:    func(s *content.Student, id int64) { s.ID = id },
		row: func(s content.Student) []string {
			return []string{s.DisplayName, s.Belt, s.GroupName, strconv.Itoa(s.RatingPoints), strconv.Itoa(s.Attendance()) + "%"}
		},
		fields: func(s content.Student) []views.Field {
			return []views.Field{
				{Name: "display_name", Label: "Имя", Value: s.DisplayName, Required: true},
				{Name: "belt", Label: "Пояс", Value: s.Belt},
				{Name: "group_name", Label: "Группа", Value: s.GroupName},
				{Name: "bio_short", Label: "О себе", Kind: views.FieldTextarea, Value: s.BioShort},
				{Name: "rating_points", Label: "Очки рейтинга", Kind: views.FieldNumber, Value: strconv.Itoa(s.RatingPoints)},
				{Name: "attended_classes", Label: "Посещено занятий", Kind: views.FieldNumber, Value: strconv.Itoa(s.AttendedClasses)},
				{Name: "total_classes", Label: "Всего занятий", Kind: views.FieldNumber, Value: strconv.Itoa(s.TotalClasses)},
				{Name: "photo_url", Label: "Фото (URL)", Value: s.PhotoURL},
				{Name: "public_visible", Label: "Показывать на сайте", Kind: views.FieldCheckbox, Checked: s.PublicVisible},
			}
		},
		decode: func(f url.Values, s *content.Student) error {
			s.DisplayName = text(f, "display_name")
			s.Belt = text(f, "belt")
			s.GroupName = text(f, "group_name")
			s.BioShort = text(f, "bio_short")
			s.PhotoURL = text(f, "photo_url")
			s.PublicVisible = checkbox(f, "public_visible")
			var err error
			if s.RatingPoints, err = intField(f, "rating_points"); err != nil {
				return err
			}
			if s.AttendedClasses, err = intField(f, "attended_classes"); err != nil {
				return err
			}
			if s.TotalClasses, err = intField(f, "total_classes"); err != nil {
				return err
			}
			return s.Prepare()
		},
		extra: func(path string, s content.Student) g.Node {
			return views.AwardsManager(path, s.Awards)
		},
	}
	res.routes = func(r chi.Router) {
		r.Post("/{id}/awards", func(w http.ResponseWriter, req *http.Request) {
			id, ok := pathID(req, "id")
			if !ok {
				http.NotFound(w, req)
				return
			}
			back := itemPath(res.Base, id)
			if err := req.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			award := content.Award{StudentID: id, Medal: text(req.PostForm, "medal"), Title: text(req.PostForm, "title")}
			if v := text(req.PostForm, "place"); v != "" {
				place, err := strconv.Atoi(v)
				if err != nil {
					h.awardFailed(w, req, res, id, http.StatusUnprocessableEntity, "Проверьте форму: место должно быть числом")
					return
				}
				award.Place = &place
			}
			if err := award.Prepare(); err != nil {
				h.awardFailed(w, req, res, id, http.StatusUnprocessableEntity, validationMessage(err))
				return
			}
			if _, err := store.AddAward(req.Context(), award); err != nil {
				if errors.Is(err, content.ErrNotFound) {
					http.NotFound(w, req)
					return
				}
				h.logger.Error().Err(err).Int64("student", id).Msg("add award")
				h.awardFailed(w, req, res, id, http.StatusInternalServerError, "Не удалось добавить награду")
				return
			}
			h.logger.Info().Str("email", identityEmail(req)).Int64("student", id).Str("medal", award.Medal).Msg("award added")
			http.Redirect(w, req, back, http.StatusSeeOther)
		})
		r.Post("/{id}/awards/{awardID}/delete", func(w http.ResponseWriter, req *http.Request) {
			id, ok := pathID(req, "id")
			awardID, ok2 := pathID(req, "awardID")
			if !ok || !ok2 {
				http.NotFound(w, req)
				return
			}
			if err := store.DeleteAward(req.Context(), id, awardID); err != nil && !errors.Is(err, content.ErrNotFound) {
				h.logger.Error().Err(err).Int64("student", id).Int64("award", awardID).Msg("delete award")
				h.awardFailed(w, req, res, id, http.StatusInternalServerError, "Не удалось удалить награду")
				return
			}
			http.Redirect(w, req, itemPath(res.Base, id), http.StatusSeeOther)
		})
	}
	return res
}

// awardFailed re-renders the student page with an error above the form.
func (h *Handler) awardFailed(w http.ResponseWriter, r *http.Request, res resource[content.Student], id int64, status int, msg string) {
	s, err := res.store.Get(r.Context(), id)
	if err != nil {
		loadFailed(h, w, r, res, err)
		return
	}
	renderEdit(h, w, r, res, status, s, msg)
}

func coachResource(store content.Store[content.Coach]) resource[content.Coach] {
	return resource[content.Coach]{
		Resource: views.Resource{Base: "/admin/coaches", Title: "Тренеры", Singular: "Тренер", Columns: []string{"Имя", "Звание", "Роль", "Порядок"}},
		store:    store,
		id:       func(c content.Coach) int64 { return c.ID },
		setID:    func(c *content.Coach, id int64) { c.ID = id },
		row: func(c content.Coach) []string {
			return []string{c.FullName, c.Rank, c.Role, strconv.Itoa(c.DisplayOrder)}
		},
		fields: func(c content.Coach) []views.Field {
			return []views.Field{
				{Name: "full_name", Label: "Имя", Value: c.FullName, Required: true},
				{Name: "rank", Label: "Звание (дан)", Value: c.Rank},
				{Name: "experience", Label: "Стаж", Value: c.Experience},
				{Name: "role", Label: "Роль", Value: c.Role},
				{Name: "description", Label: "Описание", Kind: views.FieldTextarea, Value: c.Description},
				{Name: "image_url", Label: "Фото (URL)", Value: c.ImageURL},
				{Name: "instagram", Label: "Instagram", Value: c.Instagram},
				{Name: "display_order", Label: "Порядок", Kind: views.FieldNumber, Value: strconv.Itoa(c.DisplayOrder)},
			}
		},
		decode: func(f url.Values, c *content.Coach) error {
			c.FullName = text(f, "full_name")
			c.Rank = text(f, "rank")
			c.Experience = text(f, "experience")
			c.Role = text(f, "role")
			c.Description = f.Get("description")
			c.ImageURL = text(f, "image_url")
			c.Instagram = text(f, "instagram")
			order, err := intField(f, "display_order")
			if err != nil {
				return err
			}
			c.DisplayOrder = order
			return c.Prepare()
		},
	}
}

func galleryResource(store content.Store[content.GalleryItem]) resource[content.GalleryItem] {
	return resource[content.GalleryItem]{
		Resource: views.Resource{Base: "/admin/gallery", Title: "Галерея", Singular: "Элемент галереи", Columns: []string{"Тип", "Название", "Добавлено"}},
		store:    store,
		id:       func(item content.GalleryItem) int64 { return item.ID },
		setID:    func(item *content.GalleryItem, id int64) { item.ID = id },
		row: func(item content.GalleryItem) []string {
			return []string{item.Kind, item.Title, item.CreatedAt.Format(time.DateOnly)}
		},
		fields: func(item content.GalleryItem) []views.Field {
			kind := item.Kind
			if kind == "" {
				kind = content.KindPhoto
			}
			return []views.Field{
				{Name: "kind", Label: "Тип", Kind: views.FieldSelect, Options: []string{content.KindPhoto, content.KindVideo}, Value: kind},
				{Name: "title", Label: "Название", Value: item.Title},
				{Name: "description", Label: "Описание", Kind: views.FieldTextarea, Value: item.Description},
				{Name: "image_url", Label: "Изображение (URL)", Value: item.ImageURL},
				{Name: "video_url", Label: "Видео (URL)", Value: item.VideoURL, Hint: "Только для видео"},
			}
		},
		decode: func(f url.Values, item *content.GalleryItem) error {
			item.Kind = text(f, "kind")
			item.Title = text(f, "title")
			item.Description = f.Get("description")
			item.ImageURL = text(f, "image_url")
			item.VideoURL = text(f, "video_url")
			return item.Prepare()
		},
	}
}

func publishedLabel(published bool) string {
	if published {
		return "Опубликовано"
	}
	return "Черновик"
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

func dateValue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(time.DateOnly)
}
