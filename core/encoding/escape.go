// Package encoding provides the escaping rules used when writing edition markup.
package encoding

import "strings"

// markupReplacer escapes the three mandatory metacharacters plus both quote
// characters. '&' must be handled in the same pass so existing entities in the
// output are never double-escaped.
var markupReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Escape escapes s for use anywhere in an edition document: element content
// and attribute values get the same treatment.
func Escape(s string) string {
	return markupReplacer.Replace(s)
}

// CollapseSpace replaces every run of whitespace with a single space and trims
// the result.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
