package views

import (
	"strconv"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"kingdojo/internal/content"
)

var siteNav = []navItem{
	{"/", "Главная"},
	{"/news", "Новости"},
	{"/achievements", "Достижения"},
	{"/schedule", "Расписание"},
	{"/students", "Ученики"},
	{"/coaches", "Тренеры"},
	{"/gallery", "Галерея"},
	{"/shop", "Магазин"},
}

// sitePage wraps a public page with the top navigation.
func sitePage(title, active string, children ...Node) Node {
	return page(title, "site",
		Nav(Class("topnav"),
			A(Href("/"), Class("logo"), Text(siteName)),
			Ul(Map(siteNav, func(item navItem) Node {
				return Li(A(Href(item.href), If(item.href == active, Class("active")), Text(item.label)))
			})),
		),
		Main(Class("site-main"), Group(children)),
	)
}

func empty(items int, msg string) Node {
	if items > 0 {
		return nil
	}
	return P(Class("muted"), Text(msg))
}

func cover(src, alt string) Node {
	if src == "" {
		return nil
	}
	return Img(Class("cover"), Src(src), Alt(alt), Attr("loading", "lazy"))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}

// NewsListPage lists published news.
func NewsListPage(items []content.News) Node {
	return sitePage("Новости", "/news",
		H1(Text("Новости")),
		empty(len(items), "Новостей пока нет."),
		Div(Class("grid"), Map(items, func(n content.News) Node {
			return A(Href("/news/"+n.Slug), Class("tile"),
				cover(n.CoverImage, n.Title),
				H2(Text(n.Title)),
				If(n.PublishedAt != nil, P(Class("muted"), Text(formatDate(n.PublishedAt)))),
				If(n.Excerpt != "", P(Text(n.Excerpt))),
			)
		})),
	)
}

// NewsPage renders one article. The body is Markdown rendered to sanitized HTML.
func NewsPage(n content.News) Node {
	return sitePage(n.Title, "/news",
		Article(Class("article"),
			P(A(Href("/news"), Text("← Все новости"))),
			H1(Text(n.Title)),
			If(n.PublishedAt != nil, P(Class("muted"), Text(formatDate(n.PublishedAt)))),
			cover(n.CoverImage, n.Title),
			Div(Class("prose"), Raw(content.RenderMarkdown(n.Body))),
		),
	)
}

// AchievementsPage lists published achievements, newest first.
func AchievementsPage(items []content.Achievement) Node {
	return sitePage("Достижения", "/achievements",
		H1(Text("Достижения")),
		empty(len(items), "Скоро здесь появятся наши победы."),
		Div(Class("grid"), Map(items, func(a content.Achievement) Node {
			return A(Href("/achievements/"+a.Slug), Class("tile"),
				cover(a.CoverImage, a.Title),
				H2(Text(a.Title)),
				If(a.Date != nil, P(Class("muted"), Text(formatDate(a.Date)))),
			)
		})),
	)
}

func AchievementPage(a content.Achievement) Node {
	return sitePage(a.Title, "/achievements",
		Article(Class("article"),
			P(A(Href("/achievements"), Text("← Все достижения"))),
			H1(Text(a.Title)),
			If(a.Date != nil, P(Class("muted"), Text(formatDate(a.Date)))),
			cover(a.CoverImage, a.Title),
			Div(Class("prose"), Raw(content.RenderMarkdown(a.Description))),
		),
	)
}

// ShopPage lists the products on sale.
func ShopPage(items []content.Product) Node {
	return sitePage("Магазин", "/shop",
		H1(Text("Магазин")),
		empty(len(items), "Товаров пока нет."),
		Div(Class("grid"), Map(items, func(p content.Product) Node {
			return A(Href("/shop/"+p.Slug), Class("tile"),
				cover(p.ImageURL, p.Title),
				H2(Text(p.Title)),
				If(p.Category != "", P(Class("muted"), Text(p.Category))),
				P(Class("price"), Text(p.PriceLabel())),
			)
		})),
	)
}

// ProductPage shows one product with messenger order links. whatsApp and
// telegram are empty when the club has not configured them.
func ProductPage(p content.Product, whatsApp, telegram, message string) Node {
	return sitePage(p.Title, "/shop",
		Article(Class("article product"),
			P(A(Href("/shop"), Text("← Магазин"))),
			cover(p.ImageURL, p.Title),
			H1(Text(p.Title)),
			P(Class("price"), Text(p.PriceLabel())),
			If(len(p.Sizes) > 0, P(Textf("Размеры: %s", joinSizes(p.Sizes)))),
			If(p.Description != "", P(Text(p.Description))),
			Div(Class("order"),
				If(whatsApp != "", A(Href(whatsApp), Class("btn btn-primary"), Target("_blank"), Rel("noopener"), Text("Заказать в WhatsApp"))),
				If(telegram != "", A(Href(telegram), Class("btn btn-outline"), Target("_blank"), Rel("noopener"), Text("Написать в Telegram"))),
				If(whatsApp == "" && telegram == "", P(Class("muted"), Text("Свяжитесь с нами по телефону для заказа."))),
			),
			Details(Summary(Text("Текст сообщения")), Pre(Text(message))),
		),
	)
}

func joinSizes(sizes []string) string {
	out := ""
	for i, s := range sizes {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// SchedulePage shows the active timetable cards.
func SchedulePage(items []content.Schedule) Node {
	return sitePage("Расписание", "/schedule",
		H1(Text("Расписание")),
		empty(len(items), "Расписание обновляется."),
		Div(Class("grid"), Map(items, func(s content.Schedule) Node {
			return Section(Class("tile schedule"),
				H2(Text(s.Title)),
				If(s.Subtitle != "", P(Class("muted"), Text(s.Subtitle))),
				If(s.Days != "", P(Strong(Text(s.Days)))),
				Ul(Map(s.Groups, func(g content.ScheduleGroup) Node {
					return Li(Span(Text(g.Name)), Text(" "), Span(Class("time"), Text(g.Time)))
				})),
			)
		})),
	)
}

// StudentsPage is the public rating board.
func StudentsPage(items []content.Student) Node {
	return sitePage("Ученики", "/students",
		H1(Text("Рейтинг учеников")),
		empty(len(items), "Рейтинг скоро появится."),
		Ol(Class("rating"), Map(items, func(s content.Student) Node {
			return Li(Class("student"),
				If(s.PhotoURL != "", Img(Src(s.PhotoURL), Alt(s.DisplayName), Attr("loading", "lazy"))),
				H2(Text(s.DisplayName)),
				P(Class("muted"), Text(joinNonEmpty(s.Belt, s.GroupName))),
				P(Text(strconv.Itoa(s.RatingPoints)+" очков · посещаемость "+strconv.Itoa(s.Attendance())+"%")),
				If(s.BioShort != "", P(Text(s.BioShort))),
				If(len(s.Awards) > 0, Ul(Class("medals"), Map(s.Awards, func(a content.Award) Node {
					return Li(Span(Class("medal medal-"+a.Medal), Text(medalLabel(a.Medal))), Text(" "+a.Title))
				}))),
			)
		})),
	)
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += p
	}
	return out
}

// CoachesPage lists the trainers in display order.
func CoachesPage(items []content.Coach) Node {
	return sitePage("Тренеры", "/coaches",
		H1(Text("Тренеры")),
		empty(len(items), "Информация о тренерах скоро появится."),
		Div(Class("grid"), Map(items, func(c content.Coach) Node {
			return Section(Class("tile coach"),
				cover(c.ImageURL, c.FullName),
				H2(Text(c.FullName)),
				P(Class("muted"), Text(joinNonEmpty(c.Rank, c.Role, c.Experience))),
				If(c.Description != "", P(Text(c.Description))),
				If(c.Instagram != "", A(Href(c.Instagram), Target("_blank"), Rel("noopener"), Text("Instagram"))),
			)
		})),
	)
}

// GalleryPage shows photos inline and links out to videos.
func GalleryPage(items []content.GalleryItem) Node {
	return sitePage("Галерея", "/gallery",
		H1(Text("Галерея")),
		empty(len(items), "Фотографии скоро появятся."),
		Div(Class("grid gallery"), Map(items, func(item content.GalleryItem) Node {
			if item.Kind == content.KindVideo {
				return A(Href(item.VideoURL), Class("tile video"), Target("_blank"), Rel("noopener"),
					cover(item.ImageURL, item.Title),
					P(Text("▶ "+firstNonEmpty(item.Title, "Видео"))),
				)
			}
			return Figure(Class("tile"),
				cover(item.ImageURL, item.Title),
				If(item.Title != "", FigCaption(Text(item.Title))),
			)
		})),
	)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// NotFoundPage is the public 404.
func NotFoundPage() Node {
	return sitePage("Не найдено", "",
		H1(Text("Страница не найдена")),
		P(A(Href("/"), Text("На главную"))),
	)
}

// UnavailablePage is shown when content cannot be loaded.
func UnavailablePage() Node {
	return sitePage("Ошибка", "",
		H1(Text("Сервис временно недоступен")),
		P(Text("Попробуйте обновить страницу позже.")),
	)
}
