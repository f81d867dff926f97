package glossary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	corexml "github.com/FocuswithJustin/aitbible/core/xml"
	"github.com/FocuswithJustin/aitbible/internal/markup"
)

// Verse holds what the cross-referencer needs from one edition verse.
type Verse struct {
	Number int
	// Lemmas is the set of folded lemmas of the verse's Greek words.
	Lemmas map[string]bool
	// Text is the English text without markup.
	Text   string
	folded string
}

// Chapter maps verse numbers to verses.
type Chapter struct {
	Number int
	Verses map[int]*Verse
}

// Book maps chapter numbers to chapters.
type Book struct {
	ID       string
	Chapters map[int]*Chapter
}

// Corpus indexes edition verses by book, chapter and verse.
type Corpus struct {
	Books map[string]*Book
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{Books: make(map[string]*Book)}
}

// AddVerse records a verse. A later call for the same verse replaces it.
func (c *Corpus) AddVerse(book string, chapter, verse int, lemmas []string, text string) {
	b := c.Books[book]
	if b == nil {
		b = &Book{ID: book, Chapters: make(map[int]*Chapter)}
		c.Books[book] = b
	}
	ch := b.Chapters[chapter]
	if ch == nil {
		ch = &Chapter{Number: chapter, Verses: make(map[int]*Verse)}
		b.Chapters[chapter] = ch
	}

	set := make(map[string]bool, len(lemmas))
	for _, l := range lemmas {
		if l = Fold(strings.TrimSpace(l)); l != "" {
			set[l] = true
		}
	}
	text = strings.TrimSpace(text)
	ch.Verses[verse] = &Verse{Number: verse, Lemmas: set, Text: text, folded: Fold(text)}
}

// Verse returns the verse at (book, chapter, verse), or nil.
func (c *Corpus) Verse(book string, chapter, verse int) *Verse {
	b := c.Books[book]
	if b == nil {
		return nil
	}
	ch := b.Chapters[chapter]
	if ch == nil {
		return nil
	}
	return ch.Verses[verse]
}

// VerseCount returns the number of verses in the corpus.
func (c *Corpus) VerseCount() int {
	n := 0
	for _, b := range c.Books {
		for _, ch := range b.Chapters {
			n += len(ch.Verses)
		}
	}
	return n
}

// AddDocument indexes an in-memory edition document.
func (c *Corpus) AddDocument(doc *markup.Document) {
	for _, ch := range doc.Book.Chapters {
		for i := range ch.Verses {
			v := &ch.Verses[i]
			lemmas := make([]string, 0, len(v.Words))
			for _, w := range v.Words {
				lemmas = append(lemmas, w.Lemma)
			}
			c.AddVerse(doc.Book.ID, ch.Number, v.Number, lemmas, v.PlainText())
		}
	}
}

// AddXML indexes an edition XML file's contents. Documents whose root is not
// an ait element, or that have no book element, are ignored.
func (c *Corpus) AddXML(data []byte) error {
	doc, err := corexml.Parse(data)
	if err != nil {
		return &coreerrors.ParseError{Format: "edition XML", Message: err.Error(), Err: err}
	}

	root := doc.Root()
	if root == nil || root.Name() != "ait" {
		return nil
	}
	book, err := root.XPathFirst("book")
	if err != nil {
		return err
	}
	if book == nil {
		return nil
	}
	bookID := book.Attr("id")

	chapters, err := book.XPath("chapter")
	if err != nil {
		return err
	}
	for _, chEl := range chapters {
		chNum, err := chEl.IntAttr("num")
		if err != nil {
			return &coreerrors.ParseError{Format: "edition XML", Message: err.Error(), Err: err}
		}
		verses, err := chEl.XPath("verse")
		if err != nil {
			return err
		}
		for _, vEl := range verses {
			vNum, err := vEl.IntAttr("num")
			if err != nil {
				return &coreerrors.ParseError{Format: "edition XML", Message: fmt.Sprintf("%s chapter %d: %v", bookID, chNum, err), Err: err}
			}

			words, err := vEl.XPath("greek/w")
			if err != nil {
				return err
			}
			lemmas := make([]string, 0, len(words))
			for _, w := range words {
				lemmas = append(lemmas, w.Attr("lemma"))
			}

			text, _ := vEl.ChildText("text")
			c.AddVerse(bookID, chNum, vNum, lemmas, text)
		}
	}
	return nil
}

// LoadDir builds a corpus from every *.xml file in dir, in name order. It
// returns the number of files read.
func LoadDir(dir string) (*Corpus, int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, 0, err
	}
	sort.Strings(paths)

	c := NewCorpus()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, coreerrors.NewIO("read", path, err)
		}
		if err := c.AddXML(data); err != nil {
			var pe *coreerrors.ParseError
			if coreerrors.As(err, &pe) {
				pe.Path = path
			}
			return nil, 0, err
		}
	}
	return c, len(paths), nil
}
