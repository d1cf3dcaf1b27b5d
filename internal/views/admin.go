package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"kingdojo/internal/content"
)

// Dashboard is the admin landing page.
func Dashboard(email string, s content.Settings) Node {
	return adminPage("Панель управления", email, "/admin",
		P(Textf("Вы вошли как %s.", email)),
		Section(Class("cards"),
			card("/admin/news", "Новости", "Анонсы и статьи клуба."),
			card("/admin/students", "Ученики", "Рейтинг, посещаемость и награды."),
			card("/admin/schedules", "Расписание", "Дни и время тренировок по группам."),
			card("/admin/settings", "Настройки сайта", "Телефон, адрес и ссылки на соцсети."),
			card("/admin/media", "Медиа", "Загрузка изображений для новостей, галереи и магазина."),
		),
		If(s.Phone != "" || s.Address != "",
			Section(Class("summary"),
				H2(Text("Контакты на сайте")),
				If(s.Phone != "", P(Text(s.Phone))),
				If(s.Address != "", P(Text(s.Address))),
			),
		),
	)
}

func card(href, title, desc string) Node {
	return A(Href(href), Class("card"),
		H2(Text(title)),
		P(Text(desc)),
	)
}

// SettingsPage renders the site settings form.
func SettingsPage(email string, s content.Settings, notice, errMsg string) Node {
	return adminPage("Настройки", email, "/admin/settings",
		flash("ok", notice),
		flash("error", errMsg),
		Form(Method("post"), Action("/admin/settings"), Class("form"),
			field("phone", "Телефон", s.Phone),
			field("address", "Адрес", s.Address),
			H2(Text("Социальные сети")),
			field("instagram", "Instagram", s.SocialLinks.Instagram),
			field("telegram", "Telegram", s.SocialLinks.Telegram),
			field("youtube", "YouTube", s.SocialLinks.YouTube),
			field("tiktok", "TikTok", s.SocialLinks.TikTok),
			field("whatsapp", "WhatsApp", s.SocialLinks.WhatsApp),
			Button(Type("submit"), Class("btn btn-primary"), Text("Сохранить")),
		),
	)
}

func field(name, label, value string) Node {
	return Div(Class("field"),
		Label(For(name), Text(label)),
		Input(ID(name), Type("text"), Name(name), Value(value)),
	)
}

// MediaPage renders the upload form and, after an upload, the public URL.
func MediaPage(email, uploadedURL, errMsg string) Node {
	return adminPage("Медиа", email, "/admin/media",
		flash("error", errMsg),
		If(uploadedURL != "",
			Div(Class("uploaded"),
				Img(Src(uploadedURL), Alt("uploaded image")),
				Input(Type("text"), Value(uploadedURL), ReadOnly()),
			),
		),
		Form(Method("post"), Action("/admin/media"), Attr("enctype", "multipart/form-data"), Class("form"),
			Input(Type("file"), Name("file"), Attr("accept", "image/*"), Required()),
			Button(Type("submit"), Class("btn btn-primary"), Text("Загрузить")),
		),
	)
}
