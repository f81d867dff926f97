// Package export renders edition documents in the reader-facing formats:
// a JSON book file and a combined plain-text book.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/internal/markup"
)

// Verse is one verse in the JSON book format.
type Verse struct {
	Verse          int    `json:"verse"`
	Text           string `json:"text"`
	ParagraphStart bool   `json:"paragraphStart"`
}

// Chapter is one chapter in the JSON book format.
type Chapter struct {
	Chapter int     `json:"chapter"`
	Verses  []Verse `json:"verses"`
	Notes   string  `json:"notes"`
}

// Book is the JSON book file.
type Book struct {
	Book     string    `json:"book"`
	Chapters []Chapter `json:"chapters"`
}

// FromDocument converts an edition document. Greek words are not included.
func FromDocument(doc *markup.Document) *Book {
	b := &Book{Book: doc.Book.Name, Chapters: make([]Chapter, 0, len(doc.Book.Chapters))}
	for _, ch := range doc.Book.Chapters {
		c := Chapter{Chapter: ch.Number, Verses: make([]Verse, 0, len(ch.Verses)), Notes: ch.NotesText}
		for _, v := range ch.Verses {
			c.Verses = append(c.Verses, Verse{Verse: v.Number, Text: v.Text, ParagraphStart: v.ParagraphStart})
		}
		b.Chapters = append(b.Chapters, c)
	}
	return b
}

// Marshal renders the book as indented JSON with non-ASCII text kept as-is.
func (b *Book) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", b.Book, err)
	}
	return buf.Bytes(), nil
}

const rule = "============================================================"

// Combine concatenates the chapter files in dir that match pattern into one
// text document. An empty pattern means markup.ChapterGlob. Leading "#"
// header lines and blank lines of each file are dropped. It returns the text
// and the number of chapter files read.
func Combine(dir, pattern, bookName string) (string, int, error) {
	paths, err := markup.ChapterFiles(dir, pattern)
	if err != nil {
		return "", 0, err
	}
	if len(paths) == 0 {
		return "", 0, &coreerrors.NotFoundError{Resource: "chapter files", ID: dir, Err: markup.ErrNoChapters}
	}

	lines := []string{
		"# " + bookName,
		"# AIT Bible Translation",
		"# aitbible.org",
		"",
		rule,
		"",
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", 0, coreerrors.NewIO("read", path, err)
		}
		lines = append(lines, stripHeader(strings.ReplaceAll(string(data), "\r\n", "\n")), "", rule, "")
	}

	return strings.Join(lines, "\n"), len(paths), nil
}

func stripHeader(content string) string {
	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) && (strings.HasPrefix(lines[i], "#") || strings.TrimSpace(lines[i]) == "") {
		i++
	}
	return strings.Join(lines[i:], "\n")
}
