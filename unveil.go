// Package unveil provides the core library for turning an ordered set of
// markdown slides into a single static HTML presentation.
package unveil

import "strconv"

// SlideIDPrefix prefixes the DOM id of every rendered slide section.
// Generated stylesheets and the bundled client script select slides by it.
const SlideIDPrefix = "unveil-slide-"

// Slide represents one markdown document rendered into one section of the page.
type Slide struct {
	Index    int    // Position in the configured slide list (0-based)
	Raw      string // Raw file content, style matter included
	Style    string // Style matter content, valid when HasStyle is true
	HasStyle bool
	HTML     string // Wrapped section fragment
}

// ID returns the DOM id of the slide section.
func (s *Slide) ID() string {
	return SlideID(s.Index)
}

// SlideID returns the DOM id used for the slide at index i.
func SlideID(i int) string {
	return SlideIDPrefix + strconv.Itoa(i)
}

// Document is the output of one build invocation.
type Document struct {
	Slides []*Slide

	// StyleSource is the aggregated, slide-scoped stylesheet source.
	// Empty when no slide carries style matter.
	StyleSource string

	// HTML holds the concatenated slide sections. After Transform it holds
	// the rewritten body content.
	HTML string

	// CSS is the compiled StyleSource. Empty when nothing was compiled.
	CSS string

	// Page is the assembled index.html content.
	Page string

	// Diagnostics collects the non-fatal transform warnings.
	Diagnostics []Diagnostic
}

// HasUserCSS reports whether the document carries compiled slide styles.
func (d *Document) HasUserCSS() bool {
	return d.CSS != ""
}
