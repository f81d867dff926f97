package annotate

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/aitbible/core/encoding"
)

// Note is a translation note attached to a verse.
type Note struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

// Unassociated is the verse key for notes that cite no verse. Such notes
// attach to the first verse of the chapter.
const Unassociated = 0

// citation is the participle grammar for the parenthetical after a note term.
// Examples: "(v. 3)", "(vv. 2-4)", "(vv. 2–4)", "(v 7)", "(vv. 1, 5)"
//
//nolint:govet // participle grammar tags are not standard struct tags
type citation struct {
	Abbrev string `"(" @( "v" | "vv" | "ver" | "verse" | "verses" ) "."?`
	Start  int    `@Int`
	Rest   []int  `( ( "-" | "–" | "—" | "," ) @Int )* ")"`
}

var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[().,\-–—]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var citationParser = participle.MustBuild[citation](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// ParseCitation returns the verse a note parenthetical points at. For a
// range or list only the first verse is returned; the note is attached
// there and nowhere else. It reports false when s is not a verse citation.
func ParseCitation(s string) (int, bool) {
	c, err := citationParser.ParseString("", strings.TrimSpace(s))
	if err != nil || c.Start < 1 {
		return 0, false
	}
	return c.Start, true
}

var (
	// noteHead matches **"term"** or **"term" (v. N)** followed by a colon.
	noteHead = regexp.MustCompile(`\*\*"([^"]+)"\s*(\([^)]*\))?\s*\*\*\s*:`)
	// boldQuote starts the next bolded term and ends an explanation.
	boldQuote = regexp.MustCompile(`\*\*"`)
	// trailingBullet is list punctuation left over before the next entry.
	trailingBullet = regexp.MustCompile(`\s+[-*•]$`)
)

// ParseNotes extracts note entries from the body of a notes section and
// groups them by verse. Entries without a verse citation, or whose
// parenthetical is not a verse citation, are keyed by Unassociated.
func ParseNotes(body string) map[int][]Note {
	notes := make(map[int][]Note)

	for _, m := range noteHead.FindAllStringSubmatchIndex(body, -1) {
		term := strings.TrimSpace(body[m[2]:m[3]])

		verse := Unassociated
		if m[4] >= 0 {
			if v, ok := ParseCitation(body[m[4]:m[5]]); ok {
				verse = v
			}
		}

		rest := body[m[1]:]
		if next := boldQuote.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		explanation := encoding.CollapseSpace(rest)
		explanation = trailingBullet.ReplaceAllString(explanation, "")

		if term == "" {
			continue
		}
		notes[verse] = append(notes[verse], Note{Term: term, Explanation: explanation})
	}

	return notes
}
