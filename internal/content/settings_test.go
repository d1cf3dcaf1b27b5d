package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocialLinksList(t *testing.T) {
	links := SocialLinks{Instagram: "https://instagram.com/kingdojo", TikTok: "  ", WhatsApp: "https://wa.me/77000000000"}
	got := links.List()
	assert.Equal(t, []Link{
		{Label: "Instagram", URL: "https://instagram.com/kingdojo"},
		{Label: "WhatsApp", URL: "https://wa.me/77000000000"},
	}, got)
	assert.Empty(t, SocialLinks{}.List())
}
