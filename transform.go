package unveil

import (
	"bytes"
	"strconv"
	"strings"
)

// Markers recognised in rendered HTML. Quotes in the class marker are
// entity-encoded because they went through markdown escaping.
const (
	RustCodeTag      = `<code class="language-rust">`
	ClassMarkerStart = `[class=&quot;`
	ClassMarkerEnd   = `&quot;]`
)

// DiagUnmatchedClass is reported for a class marker without terminator.
const DiagUnmatchedClass = "unmatched class attribute"

// Transform applies the HTML rewrites in order: user class injection, then
// playpen button injection.
func Transform(html string) (string, []Diagnostic) {
	out, diags := InjectUserClasses(html)
	return InjectPlaypenButtons(out), diags
}

// InjectUserClasses replaces [class="name"] markers with a class attribute
// on the closest tag opened before the marker.
//
// The enclosing tag is looked up in the original text, while the attribute
// is spliced into the result built so far, so later markers see earlier
// splices. An unterminated marker stops the rewrite: it and everything after
// it are copied verbatim and one diagnostic is reported.
func InjectUserClasses(html string) (string, []Diagnostic) {
	var diags []Diagnostic
	result := make([]byte, 0, len(html)+32)
	lastEnd := 0

	for pos := 0; pos < len(html); {
		rel := strings.Index(html[pos:], ClassMarkerStart)
		if rel < 0 {
			break
		}
		start := pos + rel
		pos = start + len(ClassMarkerStart)

		if start < lastEnd {
			// Marker inside the span of a consumed one.
			continue
		}

		nameStart := start + len(ClassMarkerStart)
		nameLen := strings.Index(html[nameStart:], ClassMarkerEnd)
		result = append(result, html[lastEnd:start]...)
		lastEnd = start

		if nameLen < 0 {
			diags = append(diags, Diagnostic{Offset: start, Message: DiagUnmatchedClass})
			break
		}

		if strings.LastIndexByte(html[:start], '>') < 0 {
			// No enclosing tag: the marker stays as text.
			continue
		}

		name := html[nameStart : nameStart+nameLen]
		if i := bytes.LastIndexByte(result, '>'); i >= 0 {
			result = insertAt(result, i, ` class="`+name+`"`)
		}
		lastEnd = nameStart + nameLen + len(ClassMarkerEnd)
		pos = lastEnd
	}

	result = append(result, html[lastEnd:]...)
	return string(result), diags
}

func insertAt(buf []byte, i int, s string) []byte {
	buf = append(buf, s...)
	copy(buf[i+len(s):], buf[i:len(buf)-len(s)])
	copy(buf[i:], s)
	return buf
}

// PlaypenButtonID returns the id shared by the controls of the n-th rust
// code block.
func PlaypenButtonID(n int) string {
	return "rust-code-block-" + strconv.Itoa(n)
}

// PlaypenButtons returns the copy and play controls for the n-th rust block.
func PlaypenButtons(n int) string {
	id := PlaypenButtonID(n)
	return `<div class="btn-code-container"><div class="btn-code">` +
		`<i class="fas fa-copy bounce-in btn-copy" id="` + id + `"></i>` +
		`<i class="fas fa-play btn-playpen" onclick="play_playpen(this.id)" id="` + id + `"></i>` +
		`</div></div>`
}

// InjectPlaypenButtons inserts copy/play controls immediately before every
// rust code tag. Blocks are numbered from 0 across the whole document.
func InjectPlaypenButtons(html string) string {
	var b strings.Builder
	b.Grow(len(html))

	lastEnd := 0
	for n := 0; ; n++ {
		rel := strings.Index(html[lastEnd:], RustCodeTag)
		if rel < 0 {
			break
		}
		start := lastEnd + rel
		b.WriteString(html[lastEnd:start])
		b.WriteString(PlaypenButtons(n))
		b.WriteString(RustCodeTag)
		lastEnd = start + len(RustCodeTag)
	}
	b.WriteString(html[lastEnd:])
	return b.String()
}
