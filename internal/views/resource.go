package views

import (
	"strconv"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"kingdojo/internal/content"
)

// FieldKind selects the input control for a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldTextarea
	FieldNumber
	FieldDate
	FieldCheckbox
	FieldSelect
)

// Field describes one input of an admin edit form.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Value    string
	Checked  bool
	Options  []string
	Required bool
	Hint     string
}

// Resource names an admin content section.
type Resource struct {
	Base     string
	Title    string
	Singular string
	Columns  []string
}

// Row is one record in an admin list.
type Row struct {
	ID    int64
	Cells []string
}

func (r Resource) itemPath(id int64) string {
	return r.Base + "/" + strconv.FormatInt(id, 10)
}

// ResourceList renders the records of a section with edit and delete controls.
func ResourceList(email string, res Resource, rows []Row, notice, errMsg string) Node {
	return adminPage(res.Title, email, res.Base,
		flash("ok", notice),
		flash("error", errMsg),
		P(A(Href(res.Base+"/new"), Class("btn btn-primary"), Text("Добавить"))),
		If(len(rows) == 0, P(Class("muted"), Text("Записей пока нет."))),
		If(len(rows) > 0,
			Table(Class("records"),
				THead(Tr(
					Map(res.Columns, func(c string) Node { return Th(Text(c)) }),
					Th(),
				)),
				TBody(Map(rows, func(row Row) Node {
					return Tr(
						Map(row.Cells, func(c string) Node { return Td(Text(c)) }),
						Td(Class("actions"),
							A(Href(res.itemPath(row.ID)), Text("Изменить")),
							Form(Method("post"), Action(res.itemPath(row.ID)+"/delete"),
								Button(Type("submit"), Class("btn btn-outline"), Text("Удалить")),
							),
						),
					)
				})),
			),
		),
	)
}

// ResourceForm renders the create or edit form. extra is appended below the
// form, e.g. the awards manager on a student page.
func ResourceForm(email string, res Resource, action string, fields []Field, errMsg string, extra ...Node) Node {
	return adminPage(res.Singular, email, res.Base,
		P(A(Href(res.Base), Text("← "+res.Title))),
		flash("error", errMsg),
		Form(Method("post"), Action(action), Class("form"),
			Map(fields, formField),
			Button(Type("submit"), Class("btn btn-primary"), Text("Сохранить")),
		),
		Group(extra),
	)
}

func formField(f Field) Node {
	id := "f-" + f.Name
	var control Node
	switch f.Kind {
	case FieldTextarea:
		control = Textarea(ID(id), Name(f.Name), Rows("8"), If(f.Required, Required()), Text(f.Value))
	case FieldCheckbox:
		return Div(Class("field field-check"),
			Label(
				Input(ID(id), Type("checkbox"), Name(f.Name), Value("on"), If(f.Checked, Checked())),
				Text(" "+f.Label),
			),
		)
	case FieldSelect:
		control = Select(ID(id), Name(f.Name),
			Map(f.Options, func(o string) Node {
				return Option(Value(o), If(o == f.Value, Selected()), Text(o))
			}),
		)
	case FieldNumber:
		control = Input(ID(id), Type("number"), Name(f.Name), Value(f.Value), Step("any"), If(f.Required, Required()))
	case FieldDate:
		control = Input(ID(id), Type("date"), Name(f.Name), Value(f.Value), If(f.Required, Required()))
	default:
		control = Input(ID(id), Type("text"), Name(f.Name), Value(f.Value), If(f.Required, Required()))
	}
	return Div(Class("field"),
		Label(For(id), Text(f.Label)),
		control,
		If(f.Hint != "", P(Class("muted"), Text(f.Hint))),
	)
}

// AwardsManager lists a student's awards with delete buttons and an add form.
func AwardsManager(studentPath string, awards []content.Award) Node {
	return Section(Class("awards"),
		H2(Text("Награды")),
		If(len(awards) == 0, P(Class("muted"), Text("Наград пока нет."))),
		Ul(Map(awards, func(a content.Award) Node {
			return Li(
				Span(Class("medal medal-"+a.Medal), Text(medalLabel(a.Medal))),
				Text(" "+a.Title),
				If(a.Place != nil, Textf(" (%d место)", derefInt(a.Place))),
				Form(Method("post"), Action(studentPath+"/awards/"+strconv.FormatInt(a.ID, 10)+"/delete"), Class("inline"),
					Button(Type("submit"), Class("btn btn-outline"), Text("Удалить")),
				),
			)
		})),
		Form(Method("post"), Action(studentPath+"/awards"), Class("form"),
			formField(Field{Name: "medal", Label: "Медаль", Kind: FieldSelect, Options: content.Medals, Value: content.MedalGold}),
			formField(Field{Name: "title", Label: "Соревнование", Required: true}),
			formField(Field{Name: "place", Label: "Место", Kind: FieldNumber}),
			Button(Type("submit"), Class("btn btn-primary"), Text("Добавить награду")),
		),
	)
}

func medalLabel(medal string) string {
	switch medal {
	case content.MedalGold:
		return "Золото"
	case content.MedalSilver:
		return "Серебро"
	case content.MedalBronze:
		return "Бронза"
	default:
		return "Награда"
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
