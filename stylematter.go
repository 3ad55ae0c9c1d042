package unveil

import "regexp"

// StyleMatterFence delimits the style matter block at the top of a slide.
const StyleMatterFence = "+++"

// styleMatterRe matches a fenced style block anchored at the start of the
// slide (leading whitespace allowed). Group 1 is the block content, group 2
// the remaining markdown. The fence cannot be escaped inside the block.
var styleMatterRe = regexp.MustCompile(
	`^[[:space:]]*\+\+\+\r?\n((?s:.*?\n)?)\+\+\+\r?(?:\n|\z)((?s:.*))\z`,
)

// SplitStyleMatter extracts the optional style matter block from raw slide
// text. It returns the block content, the markdown body following the
// closing fence, and whether a block was found. Without a block the text is
// returned unchanged.
//
//	+++
//	h1 { color: red; }
//	+++
//	# Title
func SplitStyleMatter(text string) (style, body string, ok bool) {
	m := styleMatterRe.FindStringSubmatch(text)
	if m == nil {
		return "", text, false
	}
	return m[1], m[2], true
}
