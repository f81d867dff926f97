// Package annotate recovers verse structure from annotated translation text.
//
// A translation file holds a chapter of English text with bold verse markers
// (**1**, **2**, ...), optional inline speaker markers, and, after a line
// containing only "---", a "## Translation Notes" section whose entries are
// keyed to verses.
package annotate

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/aitbible/core/encoding"
	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/core/speaker"
)

// DefaultParagraphWindow is how many characters before a verse marker are
// searched for a blank line.
const DefaultParagraphWindow = 20

// ErrUnrecognizedChapter is returned when neither the file name nor a header
// line identifies the chapter.
var ErrUnrecognizedChapter = errors.New("unrecognized chapter")

// ParsedVerse is a verse recovered from translation text.
type ParsedVerse struct {
	Number         int
	ParagraphStart bool
	// Text has speaker markers balanced within the verse.
	Text  string
	Notes []Note
}

// ParsedChapter is the result of parsing one translation file.
type ParsedChapter struct {
	Number int
	Verses []ParsedVerse
	// NotesText is the raw notes section body, trimmed.
	NotesText string
}

// Verse returns the first parsed verse numbered n, or nil.
func (c *ParsedChapter) Verse(n int) *ParsedVerse {
	for i := range c.Verses {
		if c.Verses[i].Number == n {
			return &c.Verses[i]
		}
	}
	return nil
}

// Parser holds structural parsing options.
type Parser struct {
	ParagraphWindow int
}

// NewParser returns a Parser with the default paragraph window.
func NewParser() *Parser {
	return &Parser{ParagraphWindow: DefaultParagraphWindow}
}

var (
	filenameChapter = regexp.MustCompile(`(?i)chapter[_\s]+(\d+)`)
	headerChapter   = regexp.MustCompile(`(?m)^#[^\n]*?\bChapter\s+(\d+)`)
	separatorLine   = regexp.MustCompile(`(?m)^---[ \t]*$`)
	notesHeading    = regexp.MustCompile(`(?im)^##[ \t]*Translation Notes[ \t]*$`)
	nextHeading     = regexp.MustCompile(`(?m)^##[^#]`)
	verseMarker     = regexp.MustCompile(`\*\*(\d+)\*\*\s*`)
	blankRun        = regexp.MustCompile(`\n{2,}`)
)

// Parse parses content with the default options. name is the file name the
// content was read from and is used for the chapter hint.
func Parse(name, content string) (*ParsedChapter, error) {
	return NewParser().Parse(name, content)
}

// ParseFile reads and parses a translation file.
func (p *Parser) ParseFile(path string) (*ParsedChapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerrors.NewIO("read", path, err)
	}
	return p.Parse(filepath.Base(path), string(data))
}

// Parse recovers the chapter structure of content.
func (p *Parser) Parse(name, content string) (*ParsedChapter, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	translation, notesRegion := splitRegions(content)

	number, ok := chapterNumber(name, translation)
	if !ok {
		return nil, &coreerrors.ParseError{
			Format:  "translation",
			Path:    name,
			Message: "no chapter number in file name or header",
			Err:     ErrUnrecognizedChapter,
		}
	}

	body := notesBody(notesRegion)
	notes := ParseNotes(body)

	chapter := &ParsedChapter{
		Number:    number,
		Verses:    p.verses(translation),
		NotesText: strings.TrimSpace(body),
	}

	for i := range chapter.Verses {
		v := &chapter.Verses[i]
		if i == 0 {
			v.Notes = append(v.Notes, notes[Unassociated]...)
		}
		v.Notes = append(v.Notes, notes[v.Number]...)
	}

	return chapter, nil
}

func chapterNumber(name, translation string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if m := filenameChapter.FindStringSubmatch(base); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	if m := headerChapter.FindStringSubmatch(translation); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func splitRegions(content string) (translation, notes string) {
	loc := separatorLine.FindStringIndex(content)
	if loc == nil {
		return content, ""
	}
	return content[:loc[0]], content[loc[1]:]
}

func notesBody(region string) string {
	loc := notesHeading.FindStringIndex(region)
	if loc == nil {
		return ""
	}
	body := region[loc[1]:]
	end := len(body)
	if next := nextHeading.FindStringIndex(body); next != nil {
		end = next[0]
	}
	// A horizontal rule also closes the section.
	if rule := separatorLine.FindStringIndex(body); rule != nil && rule[0] < end {
		end = rule[0]
	}
	return body[:end]
}

func (p *Parser) verses(translation string) []ParsedVerse {
	window := p.ParagraphWindow
	if window <= 0 {
		window = DefaultParagraphWindow
	}

	markers := verseMarker.FindAllStringSubmatchIndex(translation, -1)
	verses := make([]ParsedVerse, 0, len(markers))
	var active []speaker.Span

	for i, m := range markers {
		number, err := strconv.Atoi(translation[m[2]:m[3]])
		if err != nil {
			continue
		}

		end := len(translation)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		text := normalize(translation[m[1]:end])
		if text == "" {
			continue
		}

		paragraph := len(verses) == 0
		if !paragraph {
			from := m[0] - window
			if from < 0 {
				from = 0
			}
			paragraph = strings.Contains(translation[from:m[0]], "\n\n")
		}

		var balanced string
		balanced, active = speaker.Balance(text, active)

		verses = append(verses, ParsedVerse{
			Number:         number,
			ParagraphStart: paragraph,
			Text:           balanced,
		})
	}

	return verses
}

func normalize(s string) string {
	return encoding.CollapseSpace(blankRun.ReplaceAllString(s, " "))
}
