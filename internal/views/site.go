package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"kingdojo/internal/content"
)

// HomePage is the public landing page with the club's contacts.
func HomePage(s content.Settings) Node {
	return sitePage("Главная", "/",
		Header(Class("hero"),
			H1(Text(siteName)),
			P(Text("Клуб боевых искусств")),
		),
		Section(Class("contacts"),
			H2(Text("Контакты")),
			If(s.Phone != "", P(A(Href("tel:"+s.Phone), Text(s.Phone)))),
			If(s.Address != "", P(Text(s.Address))),
			Ul(Map(s.SocialLinks.List(), func(l content.Link) Node {
				return Li(A(Href(l.URL), Rel("noopener"), Target("_blank"), Text(l.Label)))
			})),
		),
	)
}
