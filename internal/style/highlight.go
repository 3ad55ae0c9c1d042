package style

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightCSS returns the stylesheet for code highlighted at build time
// with the named chroma style. Unknown names fall back to chroma's default.
func HighlightCSS(name string) ([]byte, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return nil, fmt.Errorf("highlight css %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
