package unveil

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// HTMLConverter abstracts markdown to HTML fragment conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
}

// GoldmarkOption configures a GoldmarkConverter.
type GoldmarkOption func(*goldmarkOptions)

type goldmarkOptions struct {
	gfm            bool
	highlightStyle string
}

// WithGFM enables the GitHub Flavored Markdown extensions
// (tables, strikethrough, autolinks, task lists).
func WithGFM(enabled bool) GoldmarkOption {
	return func(o *goldmarkOptions) { o.gfm = enabled }
}

// WithHighlighting highlights fenced code blocks at conversion time with
// the named chroma style. Tokens carry CSS classes; the matching stylesheet
// comes from style.HighlightCSS. An empty name disables it.
func WithHighlighting(style string) GoldmarkOption {
	return func(o *goldmarkOptions) { o.highlightStyle = style }
}

// ServerHighlightClass marks a pre element whose code was highlighted at
// build time. The client highlighter skips it.
const ServerHighlightClass = "chroma"

// codeWrapper keeps the <pre><code class="language-x"> shell of a plain
// fenced block around highlighted tokens, so the playpen marker still
// matches.
func codeWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	if ctx.Highlighted() {
		_, _ = w.WriteString(`<pre class="` + ServerHighlightClass + `">`)
	} else {
		_, _ = w.WriteString("<pre>")
	}
	_, _ = w.WriteString("<code")
	if lang, ok := ctx.Language(); ok && len(lang) > 0 {
		_, _ = w.WriteString(` class="language-` + stdhtml.EscapeString(string(lang)) + `"`)
	}
	_ = w.WriteByte('>')
}

// GoldmarkConverter converts CommonMark to HTML using goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a CommonMark converter. Raw HTML in slides is
// passed through: slides are authored locally and may embed markup.
func NewGoldmarkConverter(opts ...GoldmarkOption) *GoldmarkConverter {
	var o goldmarkOptions
	for _, opt := range opts {
		opt(&o)
	}

	var exts []goldmark.Extender
	if o.gfm {
		exts = append(exts, extension.GFM)
	}
	if o.highlightStyle != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(o.highlightStyle),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
				chromahtml.PreventSurroundingPre(true),
			),
			highlighting.WithWrapperRenderer(codeWrapper),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts one markdown document to an HTML fragment.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Renderer turns raw slide texts into wrapped HTML sections and an
// aggregated, slide-scoped stylesheet source.
type Renderer struct {
	conv HTMLConverter
}

// NewRenderer creates a Renderer. A nil converter selects the default
// CommonMark goldmark converter.
func NewRenderer(conv HTMLConverter) *Renderer {
	if conv == nil {
		conv = NewGoldmarkConverter()
	}
	return &Renderer{conv: conv}
}

// Render renders the slides in order. No state is carried between calls.
func (r *Renderer) Render(ctx context.Context, raws []string) (*Document, error) {
	doc := &Document{Slides: make([]*Slide, 0, len(raws))}

	var body, styles strings.Builder
	for i, raw := range raws {
		slide, err := r.RenderSlide(ctx, i, raw)
		if err != nil {
			return nil, err
		}
		if slide.HasStyle {
			styles.WriteString(ScopeStyle(i, slide.Style))
		}
		body.WriteString(slide.HTML)
		doc.Slides = append(doc.Slides, slide)
	}

	doc.StyleSource = styles.String()
	doc.HTML = body.String()
	return doc, nil
}

// RenderSlide renders the slide at index i.
func (r *Renderer) RenderSlide(ctx context.Context, i int, raw string) (*Slide, error) {
	style, body, ok := SplitStyleMatter(raw)
	fragment, err := r.conv.ToHTML(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", i, err)
	}
	return &Slide{
		Index:    i,
		Raw:      raw,
		Style:    style,
		HasStyle: ok,
		HTML:     WrapSlide(i, fragment),
	}, nil
}

// WrapSlide wraps a rendered fragment in the indexed section shell:
// section#unveil-slide-{i} > article > fragment.
func WrapSlide(i int, fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment) + 64)
	b.WriteString(`<section id="`)
	b.WriteString(SlideID(i))
	b.WriteString(`"><article>`)
	b.WriteString(fragment)
	b.WriteString(`</article></section>`)
	return b.String()
}

// ScopeStyle nests style matter under the selector of slide i.
func ScopeStyle(i int, style string) string {
	return "#" + SlideID(i) + " { " + style + " }"
}
