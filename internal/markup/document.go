// Package markup reconciles parsed translation chapters with the Greek source
// and emits the edition XML.
package markup

import (
	"bytes"
	"fmt"

	"github.com/FocuswithJustin/aitbible/core/encoding"
	"github.com/FocuswithJustin/aitbible/core/speaker"
	"github.com/FocuswithJustin/aitbible/internal/annotate"
)

// Version is the edition format version written to the root element.
const Version = "1.0"

// Word is one Greek token aligned to a verse.
type Word struct {
	Text  string
	Lemma string
}

// Verse is a reconciled verse. Text keeps the balanced speaker markers.
type Verse struct {
	Number         int
	ParagraphStart bool
	Text           string
	Words          []Word
	Notes          []annotate.Note
}

// PlainText returns the verse text with speaker markers removed.
func (v *Verse) PlainText() string {
	return speaker.Strip(v.Text)
}

// Chapter is a reconciled chapter.
type Chapter struct {
	Number int
	Verses []Verse
	// NotesText is the raw notes section of the source file.
	NotesText string
}

// Book is one book of the edition.
type Book struct {
	ID       string
	Name     string
	Chapters []Chapter
}

// Document is a complete edition file.
type Document struct {
	Version string
	Book    Book
}

// NewDocument returns an empty document for a book.
func NewDocument(bookID, name string) *Document {
	return &Document{
		Version: Version,
		Book:    Book{ID: bookID, Name: name},
	}
}

// VerseCount returns the number of verses across all chapters.
func (d *Document) VerseCount() int {
	n := 0
	for _, ch := range d.Book.Chapters {
		n += len(ch.Verses)
	}
	return n
}

// Marshal renders the document as edition XML.
func (d *Document) Marshal() []byte {
	var buf bytes.Buffer

	version := d.Version
	if version == "" {
		version = Version
	}

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`<ait version="%s">`, encoding.Escape(version)))
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`  <book id="%s" name="%s">`, encoding.Escape(d.Book.ID), encoding.Escape(d.Book.Name)))
	buf.WriteString("\n")

	for i := range d.Book.Chapters {
		writeChapter(&buf, &d.Book.Chapters[i])
	}

	buf.WriteString("  </book>\n")
	buf.WriteString("</ait>\n")

	return buf.Bytes()
}

func writeChapter(buf *bytes.Buffer, ch *Chapter) {
	buf.WriteString(fmt.Sprintf("    <chapter num=\"%d\">\n", ch.Number))
	for i := range ch.Verses {
		writeVerse(buf, &ch.Verses[i])
	}
	buf.WriteString("    </chapter>\n")
}

func writeVerse(buf *bytes.Buffer, v *Verse) {
	buf.WriteString(fmt.Sprintf("      <verse num=\"%d\">\n", v.Number))

	buf.WriteString("        <text>")
	if v.ParagraphStart {
		buf.WriteString("<p/>")
	}
	buf.WriteString(speaker.Convert(v.Text))
	buf.WriteString("</text>\n")

	if len(v.Words) > 0 {
		buf.WriteString("        <greek>\n")
		for _, w := range v.Words {
			buf.WriteString(fmt.Sprintf("          <w lemma=\"%s\">%s</w>\n", encoding.Escape(w.Lemma), encoding.Escape(w.Text)))
		}
		buf.WriteString("        </greek>\n")
	}

	for _, n := range v.Notes {
		buf.WriteString(fmt.Sprintf("        <note term=\"%s\">%s</note>\n", encoding.Escape(n.Term), encoding.Escape(n.Explanation)))
	}

	buf.WriteString("      </verse>\n")
}
