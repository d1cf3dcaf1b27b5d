package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":           "hello-world",
		"  Турнир в Астане  ":   "turnir-v-astane",
		"Кубок 2025: итоги!":    "kubok-2025-itogi",
		"already-a-slug":        "already-a-slug",
		"--multiple   spaces--": "multiple-spaces",
		"!!!":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewsPrepareDerivesSlug(t *testing.T) {
	n := News{Title: " Старт сезона "}
	require.NoError(t, n.Prepare())
	assert.Equal(t, "Старт сезона", n.Title)
	assert.Equal(t, "start-sezona", n.Slug)

	n = News{Title: "Anything", Slug: "Custom Slug"}
	require.NoError(t, n.Prepare())
	assert.Equal(t, "custom-slug", n.Slug)

	n = News{Title: "   "}
	assert.ErrorIs(t, n.Prepare(), ErrInvalid)
}

func TestProductPrepare(t *testing.T) {
	p := Product{Title: "Кимоно", Price: 15000, Sizes: []string{" 150 ", "", "160"}}
	require.NoError(t, p.Prepare())
	assert.Equal(t, "KZT", p.Currency)
	assert.Equal(t, []string{"150", "160"}, p.Sizes)
	assert.Equal(t, "15000 ₸", p.PriceLabel())

	p = Product{Title: "Пояс", Price: -1}
	assert.ErrorIs(t, p.Prepare(), ErrInvalid)

	p = Product{Title: "Пояс"}
	require.NoError(t, p.Prepare())
	assert.NotNil(t, p.Sizes)
}

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/77001234567", WhatsAppLink("+7 (700) 123-45-67", ""))
	assert.Equal(t, "https://wa.me/77001234567?text=hi+there", WhatsAppLink("+77001234567", "hi there"))
	assert.Empty(t, WhatsAppLink("no digits", "hi"))
}

func TestScheduleGroups(t *testing.T) {
	groups := ParseGroups("Дети 5-7 лет | 17:00\n\n Взрослые|19:30 \nИндивидуально")
	assert.Equal(t, []ScheduleGroup{
		{Name: "Дети 5-7 лет", Time: "17:00"},
		{Name: "Взрослые", Time: "19:30"},
		{Name: "Индивидуально", Time: ""},
	}, groups)
	assert.Equal(t, groups, ParseGroups(FormatGroups(groups)))

	s := Schedule{Title: "Зал на Абая"}
	assert.ErrorIs(t, s.Prepare(), ErrInvalid)
	s.Groups = groups
	assert.NoError(t, s.Prepare())
}

func TestStudentPrepare(t *testing.T) {
	s := Student{DisplayName: "Айдар", AttendedClasses: 12, TotalClasses: 10}
	assert.ErrorIs(t, s.Prepare(), ErrInvalid)

	s.TotalClasses = 16
	require.NoError(t, s.Prepare())
	assert.Equal(t, 75, s.Attendance())
	assert.Zero(t, Student{}.Attendance())
}

func TestAwardPrepare(t *testing.T) {
	place := 1
	a := Award{Medal: MedalGold, Title: "Чемпионат города", Place: &place}
	require.NoError(t, a.Prepare())

	a.Medal = "platinum"
	assert.ErrorIs(t, a.Prepare(), ErrInvalid)

	zero := 0
	a = Award{Medal: MedalOther, Title: "Лучший дебют", Place: &zero}
	assert.ErrorIs(t, a.Prepare(), ErrInvalid)
}

func TestGalleryPrepare(t *testing.T) {
	photo := GalleryItem{Kind: KindPhoto, ImageURL: "https://cdn/x.jpg", VideoURL: "https://youtu.be/x"}
	require.NoError(t, photo.Prepare())
	assert.Empty(t, photo.VideoURL)

	video := GalleryItem{Kind: KindVideo}
	assert.ErrorIs(t, video.Prepare(), ErrInvalid)
	video.VideoURL = "https://youtu.be/x"
	assert.NoError(t, video.Prepare())

	other := GalleryItem{Kind: "audio"}
	assert.ErrorIs(t, other.Prepare(), ErrInvalid)
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("**Победа!**\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))")
	assert.Contains(t, out, "<strong>Победа!</strong>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}
