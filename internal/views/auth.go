package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LoginPage is the admin sign-in form.
func LoginPage(email, errMsg string) Node {
	return page("Вход", "login",
		Main(Class("login-wrap"),
			H1(Text(siteName+" Admin")),
			flash("error", errMsg),
			Form(Method("post"), Action("/admin/login"), Class("login-form"),
				Input(Type("email"), Name("email"), Value(email), Placeholder("Email"), Attr("autocomplete", "username"), Required()),
				Input(Type("password"), Name("password"), Placeholder("Password"), Attr("autocomplete", "current-password"), Required()),
				Button(Type("submit"), Class("btn btn-primary"), Text("Войти")),
			),
		),
	)
}

// DenyPage tells an authenticated but non-allowlisted user why access was refused.
// detail is the JSON dump of the allowlist query outcome and may be empty.
func DenyPage(email, detail, signOutPath string) Node {
	return page("Отказано в доступе", "deny",
		Main(Class("deny-wrap"),
			H1(Class("destructive"), Text("Отказано в доступе")),
			P(Textf("Ваш email (%s) не в списке администраторов.", email)),
			If(detail != "",
				Div(Class("debug"),
					P(Strong(Text("Database Error Details:"))),
					Pre(Text(detail)),
					P(Class("muted"), Textf("Looking for: %s", email)),
				),
			),
			A(Href("/"), Text("На главную")),
			Form(Method("post"), Action(signOutPath),
				Button(Type("submit"), Class("btn btn-outline"), Text("Выйти и сменить аккаунт")),
			),
		),
	)
}
