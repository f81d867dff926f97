package encoding

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "In the beginning", "In the beginning"},
		{"ampersand", "grace & truth", "grace &amp; truth"},
		{"less than", "a < b", "a &lt; b"},
		{"greater than", "a > b", "a &gt; b"},
		{"double quote", `He said "follow me"`, "He said &quot;follow me&quot;"},
		{"apostrophe", "Peter's", "Peter&#x27;s"},
		{"greek", "ἐν ἀρχῇ ἦν ὁ λόγος", "ἐν ἀρχῇ ἦν ὁ λόγος"},
		{"no double escape", "&amp;", "&amp;amp;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(tt.input)
			if got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"  a  b\n\nc\t", "a b c"},
		{"single", "single"},
	}

	for _, tt := range tests {
		if got := CollapseSpace(tt.input); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
