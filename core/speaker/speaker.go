// Package speaker scans inline speaker markers in annotated translation text.
//
// Markers come in two shapes:
//
//	[JESUS]...[/JESUS]           fixed roles: JESUS, GOD, ANGEL, SCRIPTURE, CROWD
//	[SPEAKER:Peter]...[/SPEAKER] custom-named speakers
//
// Text is processed left to right with an explicit stack of open spans. The
// same scanner drives verse balancing (Balance) and markup conversion
// (Convert), so both agree on which closer ends which span.
package speaker

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/aitbible/core/encoding"
)

// Role identifies a speaker span kind.
type Role string

// Fixed roles plus the custom-named kind.
const (
	RoleJesus     Role = "JESUS"
	RoleGod       Role = "GOD"
	RoleAngel     Role = "ANGEL"
	RoleScripture Role = "SCRIPTURE"
	RoleCrowd     Role = "CROWD"
	RoleNamed     Role = "SPEAKER"
)

// labels maps fixed roles to the value of the markup "who" attribute.
var labels = map[Role]string{
	RoleJesus:     "Jesus",
	RoleGod:       "God",
	RoleAngel:     "angel",
	RoleScripture: "scripture",
	RoleCrowd:     "crowd",
}

// Span is an open speaker attribution.
type Span struct {
	Role Role
	Name string // set only for RoleNamed
}

// Who returns the label written to the markup "who" attribute.
func (s Span) Who() string {
	if s.Role == RoleNamed {
		return s.Name
	}
	return labels[s.Role]
}

// OpenMarker returns the inline marker that opens s.
func (s Span) OpenMarker() string {
	if s.Role == RoleNamed {
		return "[SPEAKER:" + s.Name + "]"
	}
	return "[" + string(s.Role) + "]"
}

// CloseMarker returns the inline marker that closes s.
func (s Span) CloseMarker() string {
	return "[/" + string(s.Role) + "]"
}

// Kind classifies a scanned token.
type Kind int

const (
	Literal Kind = iota
	Open
	Close
)

// Token is one piece of scanned text.
type Token struct {
	Kind Kind
	Span Span   // for Close tokens only Span.Role is meaningful
	Raw  string // the exact source text
}

var markerPattern = regexp.MustCompile(`\[(?:(/)?(JESUS|GOD|ANGEL|SCRIPTURE|CROWD)|SPEAKER:([^\]]+)|(/)SPEAKER)\]`)

// Scan splits text into literal runs and speaker markers.
// A named marker whose name is blank is treated as literal text.
func Scan(text string) []Token {
	var tokens []Token
	pos := 0
	appendLiteral := func(s string) {
		if s == "" {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].Kind == Literal {
			tokens[n-1].Raw += s
			return
		}
		tokens = append(tokens, Token{Kind: Literal, Raw: s})
	}

	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		appendLiteral(text[pos:m[0]])
		raw := text[m[0]:m[1]]
		pos = m[1]

		switch {
		case m[4] >= 0: // fixed role
			role := Role(text[m[4]:m[5]])
			kind := Open
			if m[2] >= 0 {
				kind = Close
			}
			tokens = append(tokens, Token{Kind: kind, Span: Span{Role: role}, Raw: raw})
		case m[6] >= 0: // [SPEAKER:name]
			name := strings.TrimSpace(text[m[6]:m[7]])
			if name == "" {
				appendLiteral(raw)
				continue
			}
			tokens = append(tokens, Token{Kind: Open, Span: Span{Role: RoleNamed, Name: name}, Raw: raw})
		default: // [/SPEAKER]
			tokens = append(tokens, Token{Kind: Close, Span: Span{Role: RoleNamed}, Raw: raw})
		}
	}
	appendLiteral(text[pos:])
	return tokens
}

// match returns the index of the most recently opened span in stack that a
// closer of role would end, or -1.
func match(stack []Span, role Role) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Role == role {
			return i
		}
	}
	return -1
}

func remove(stack []Span, i int) []Span {
	return append(stack[:i:i], stack[i+1:]...)
}

// Advance returns the open-span stack after reading text, starting from
// active. Closers without a matching open span are ignored. active is not
// modified.
func Advance(text string, active []Span) []Span {
	stack := append([]Span(nil), active...)
	for _, tok := range Scan(text) {
		switch tok.Kind {
		case Open:
			stack = append(stack, tok.Span)
		case Close:
			if i := match(stack, tok.Span.Role); i >= 0 {
				stack = remove(stack, i)
			}
		}
	}
	return stack
}

// Balance makes one verse's text self-contained. Spans in active (open when
// the verse starts) are reopened at the front, and spans still open at the end
// are closed in reverse order. It returns the balanced text and the spans that
// remain open for the next verse.
func Balance(text string, active []Span) (string, []Span) {
	next := Advance(text, active)

	var sb strings.Builder
	for _, s := range active {
		sb.WriteString(s.OpenMarker())
	}
	sb.WriteString(text)
	for i := len(next) - 1; i >= 0; i-- {
		sb.WriteString(next[i].CloseMarker())
	}
	return sb.String(), next
}

// Strip removes all recognised markers and returns the literal text.
func Strip(text string) string {
	var sb strings.Builder
	for _, tok := range Scan(text) {
		if tok.Kind == Literal {
			sb.WriteString(tok.Raw)
		}
	}
	return sb.String()
}

// Convert renders text as an escaped markup fragment in which each speaker
// span becomes <q who="...">...</q>. The raw text is read once; generated
// markup is never rescanned, so literal text that resembles a marker after
// escaping cannot be converted twice.
//
// Named and fixed-role markers never collide, so both are paired in the same
// pass. A closer that ends a span below the top of the stack closes the spans
// above it and reopens them after, keeping the output well-formed. Closers with
// no open span are kept as literal text, and spans left open are closed at
// the end.
func Convert(text string) string {
	var sb strings.Builder
	var stack []Span

	for _, tok := range Scan(text) {
		switch tok.Kind {
		case Literal:
			sb.WriteString(encoding.Escape(tok.Raw))
		case Open:
			writeOpen(&sb, tok.Span)
			stack = append(stack, tok.Span)
		case Close:
			i := match(stack, tok.Span.Role)
			if i < 0 {
				sb.WriteString(encoding.Escape(tok.Raw))
				continue
			}
			for j := len(stack) - 1; j >= i; j-- {
				sb.WriteString("</q>")
			}
			for _, s := range stack[i+1:] {
				writeOpen(&sb, s)
			}
			stack = remove(stack, i)
		}
	}
	for range stack {
		sb.WriteString("</q>")
	}
	return sb.String()
}

func writeOpen(sb *strings.Builder, s Span) {
	sb.WriteString(`<q who="`)
	sb.WriteString(encoding.Escape(s.Who()))
	sb.WriteString(`">`)
}
