package unveil

import "testing"

func TestSplitStyleMatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStyle string
		wantBody  string
		wantOK    bool
	}{
		{
			name:      "simple block",
			input:     "+++\nA\n+++\nB",
			wantStyle: "A\n",
			wantBody:  "B",
			wantOK:    true,
		},
		{
			name:      "leading whitespace",
			input:     "\n  \t+++\nh1 { color: red; }\n+++\n# Title\n",
			wantStyle: "h1 { color: red; }\n",
			wantBody:  "# Title\n",
			wantOK:    true,
		},
		{
			name:      "multi-line block",
			input:     "+++\nh1 {\n  color: red;\n}\np { margin: 0; }\n+++\nBody",
			wantStyle: "h1 {\n  color: red;\n}\np { margin: 0; }\n",
			wantBody:  "Body",
			wantOK:    true,
		},
		{
			name:      "closing fence at end of text",
			input:     "+++\nA\n+++",
			wantStyle: "A\n",
			wantBody:  "",
			wantOK:    true,
		},
		{
			name:      "empty block",
			input:     "+++\n+++\nB",
			wantStyle: "",
			wantBody:  "B",
			wantOK:    true,
		},
		{
			name:      "crlf line endings",
			input:     "+++\r\nA\r\n+++\r\nB",
			wantStyle: "A\r\n",
			wantBody:  "B",
			wantOK:    true,
		},
		{
			name:      "first closing fence wins",
			input:     "+++\nA\n+++\nB\n+++\nC",
			wantStyle: "A\n",
			wantBody:  "B\n+++\nC",
			wantOK:    true,
		},
		{
			name:     "no fence",
			input:    "# Title\n\nSome text",
			wantBody: "# Title\n\nSome text",
		},
		{
			name:     "fence not at start",
			input:    "# Title\n+++\nA\n+++\nB",
			wantBody: "# Title\n+++\nA\n+++\nB",
		},
		{
			name:     "unclosed fence",
			input:    "+++\nA\nB",
			wantBody: "+++\nA\nB",
		},
		{
			name:     "fence followed by text on same line",
			input:    "+++ a\nA\n+++\nB",
			wantBody: "+++ a\nA\n+++\nB",
		},
		{
			name:     "empty input",
			input:    "",
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style, body, ok := SplitStyleMatter(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if style != tt.wantStyle {
				t.Errorf("style = %q, want %q", style, tt.wantStyle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestSplitStyleMatterUnchangedWithoutFence(t *testing.T) {
	inputs := []string{
		"plain",
		"   indented text",
		"++\nA\n++\nB",
		"---\ntitle: x\n---\n",
	}
	for _, in := range inputs {
		_, body, ok := SplitStyleMatter(in)
		if ok || body != in {
			t.Errorf("SplitStyleMatter(%q) = (%q, %v), want input back untouched", in, body, ok)
		}
	}
}
