package unveil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblePage(t *testing.T) {
	body := WrapSlide(0, "<h1>Hi &amp; bye</h1>")

	tests := []struct {
		name        string
		opts        PageOptions
		wantLang    string
		wantUserCSS bool
		wantReload  bool
	}{
		{name: "defaults", wantLang: "EN"},
		{name: "language", opts: PageOptions{Lang: "fr"}, wantLang: "fr"},
		{name: "user css", opts: PageOptions{UserCSS: true}, wantLang: "EN", wantUserCSS: true},
		{name: "live reload", opts: PageOptions{LiveReload: true}, wantLang: "EN", wantReload: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := AssemblePage(body, tt.opts)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>\n"))
			assert.Contains(t, page, `<html lang="`+tt.wantLang+`">`)
			assert.Contains(t, page, "<title>Unveil</title>")
			assert.Contains(t, page, body, "body must not be escaped")
			assert.Equal(t, tt.wantUserCSS, strings.Contains(page, `href="user_css.css"`))
			assert.Equal(t, tt.wantReload, strings.Contains(page, `src="livereload.js"`))
		})
	}
}

func TestAssemblePageOrder(t *testing.T) {
	page, err := AssemblePage("<section>BODY</section>", PageOptions{UserCSS: true, LiveReload: true})
	require.NoError(t, err)

	order := []string{
		"<head>",
		`href="unveil.css"`,
		`href="user_css.css"`,
		`href="highlight.css"`,
		`href="fontawesome/css/fontawesome.css"`,
		"</head>",
		"<body>",
		`class="arrow-right bounce-in"`,
		`class="arrow-left bounce-in"`,
		"<section>BODY</section>",
		`src="highlight.js"`,
		`src="clipboard.js"`,
		`src="unveil.js"`,
		`src="livereload.js"`,
		"</body>",
		"</html>",
	}
	last := -1
	for _, tok := range order {
		at := strings.Index(page, tok)
		require.GreaterOrEqual(t, at, 0, "missing %q", tok)
		assert.Greater(t, at, last, "%q out of order", tok)
		last = at
	}
}

func TestAssemblePageEscapesLang(t *testing.T) {
	page, err := AssemblePage("", PageOptions{Lang: `en" onload="x`})
	require.NoError(t, err)
	assert.NotContains(t, page, `onload="x"`)
}
