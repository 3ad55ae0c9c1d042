package unveil

import (
	"bytes"
	"fmt"
	"html/template"
)

// Output file names referenced by the assembled page.
const (
	PageFile        = "index.html"
	BaseStyleFile   = "unveil.css"
	UserStyleFile   = "user_css.css"
	HighlightCSS    = "highlight.css"
	HighlightJS     = "highlight.js"
	ClipboardJS     = "clipboard.js"
	ClientJS        = "unveil.js"
	LiveReloadJS    = "livereload.js"
	IconStylesheet  = "fontawesome/css/fontawesome.css"
	PageTitle       = "Unveil"
	DefaultLanguage = "EN"
)

// PageOptions selects the conditional parts of the assembled page.
type PageOptions struct {
	Lang       string // html[lang], DefaultLanguage when empty
	UserCSS    bool   // link UserStyleFile
	LiveReload bool   // load LiveReloadJS
}

type pageData struct {
	PageOptions
	Title string
	Body  template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="unveil.css">
{{- if .UserCSS}}
<link rel="stylesheet" href="user_css.css">
{{- end}}
<link rel="stylesheet" href="highlight.css">
<link rel="stylesheet" href="fontawesome/css/fontawesome.css">
</head>
<body>
<div onclick="next_slide_right()" class="arrow-right bounce-in"><i class="fas fa-chevron-right"></i></div>
<div onclick="next_slide_left()" class="arrow-left bounce-in"><i class="fas fa-chevron-left"></i></div>
{{.Body}}
<script src="highlight.js"></script>
<script src="clipboard.js"></script>
<script src="unveil.js"></script>
{{- if .LiveReload}}
<script src="livereload.js"></script>
{{- end}}
</body>
</html>
`))

// AssemblePage wraps the transformed slide HTML into the full document.
// The body is trusted markup and is not escaped.
func AssemblePage(body string, opts PageOptions) (string, error) {
	if opts.Lang == "" {
		opts.Lang = DefaultLanguage
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		PageOptions: opts,
		Title:       PageTitle,
		Body:        template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("assemble page: %w", err)
	}
	return buf.String(), nil
}
