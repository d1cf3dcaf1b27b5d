// Package views renders server-side HTML pages with gomponents.
package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const siteName = "King Dojo"

func page(title, bodyClass string, children ...Node) Node {
	return Doctype(
		HTML(
			Lang("ru"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | "+siteName)),
				Link(Rel("stylesheet"), Href("/static/site.css")),
			),
			Body(Class(bodyClass), Group(children)),
		),
	)
}

type navItem struct {
	href  string
	label string
}

var adminNav = []navItem{
	{"/admin", "Панель"},
	{"/admin/news", "Новости"},
	{"/admin/achievements", "Достижения"},
	{"/admin/products", "Магазин"},
	{"/admin/schedules", "Расписание"},
	{"/admin/students", "Ученики"},
	{"/admin/coaches", "Тренеры"},
	{"/admin/gallery", "Галерея"},
	{"/admin/settings", "Настройки"},
	{"/admin/media", "Медиа"},
}

// adminPage wraps admin content with the sidebar and sign-out control.
func adminPage(title, email, active string, content ...Node) Node {
	return page(title, "admin",
		Aside(Class("sidebar"),
			Div(Class("brand"), Text(siteName+" Admin")),
			Nav(Ul(Map(adminNav, func(item navItem) Node {
				return Li(A(
					Href(item.href),
					If(item.href == active, Class("active")),
					Text(item.label),
				))
			}))),
			Div(Class("account"),
				P(Text(email)),
				Form(Method("post"), Action("/admin/signout"),
					Button(Type("submit"), Class("btn btn-outline"), Text("Выйти")),
				),
			),
		),
		Main(Class("admin-main"),
			H1(Text(title)),
			Group(content),
		),
	)
}

func flash(kind, msg string) Node {
	if msg == "" {
		return nil
	}
	return P(Class("flash flash-"+kind), Text(msg))
}
