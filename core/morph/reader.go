// Package morph reads MorphGNT morphological source files.
//
// A MorphGNT file holds one token per line in whitespace-separated columns:
//
//	1. book/chapter/verse as BBCCVV (e.g., "040101" = John 1:1)
//	2. part of speech
//	3. parsing code
//	4. text (including punctuation)
//	5. word (punctuation stripped)
//	6. normalized word
//	7. lemma
//
// Lines with fewer than seven columns are skipped. A Reader loads each book at
// most once and keeps it for its own lifetime; it is not safe for concurrent
// use, so independent jobs should each construct their own Reader.
package morph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/internal/archive"
)

// MinColumns is the number of columns a record needs to be parsed.
const MinColumns = 7

// Sentinel errors for corpus lookups.
var (
	// ErrUnknownBook is returned for a book missing from the book table.
	ErrUnknownBook = errors.New("unknown book")
	// ErrSourceMissing is returned when a book's MorphGNT file does not exist.
	ErrSourceMissing = errors.New("source file missing")
	// ErrChapterNotFound is returned when a loaded book lacks the chapter.
	ErrChapterNotFound = errors.New("chapter not found")
)

// DownloadHint is appended to missing-source errors.
const DownloadHint = "download the MorphGNT SBLGNT files into the greek directory first"

// ParseStats counts what happened while reading a source file.
type ParseStats struct {
	Records int // lines parsed into tokens
	Skipped int // malformed lines ignored
}

// ParseLine parses a single MorphGNT record. It reports false when the line
// has fewer than MinColumns columns or a bad position code.
func ParseLine(line string) (Token, bool) {
	fields := strings.Fields(line)
	if len(fields) < MinColumns {
		return Token{}, false
	}

	book, chapter, verse, err := DecodeBCV(fields[0])
	if err != nil {
		return Token{}, false
	}

	return Token{
		Book:         book,
		Chapter:      chapter,
		Verse:        verse,
		PartOfSpeech: fields[1],
		Parsing:      fields[2],
		Text:         fields[3],
		Word:         fields[4],
		Normalized:   fields[5],
		Lemma:        fields[6],
	}, true
}

// Parse groups the records of one source file by chapter and verse.
// The first record with enough columns must carry a valid position code;
// otherwise the file is not MorphGNT and a ParseError is returned. Later
// malformed lines are counted and skipped.
func Parse(data []byte) (map[int]*Chapter, ParseStats, error) {
	chapters := make(map[int]*Chapter)
	var stats ParseStats
	checked := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		tok, ok := ParseLine(line)
		if !ok {
			fields := strings.Fields(line)
			if !checked && len(fields) >= MinColumns {
				if _, _, _, err := DecodeBCV(fields[0]); err != nil {
					return nil, stats, &coreerrors.ParseError{
						Format:  "MorphGNT",
						Message: "first record has no BBCCVV position code",
						Err:     err,
					}
				}
			}
			stats.Skipped++
			continue
		}
		checked = true
		stats.Records++

		ch, ok := chapters[tok.Chapter]
		if !ok {
			ch = &Chapter{Number: tok.Chapter, Verses: make(map[int]*Verse)}
			chapters[tok.Chapter] = ch
		}
		v, ok := ch.Verses[tok.Verse]
		if !ok {
			v = &Verse{Chapter: tok.Chapter, Number: tok.Verse}
			ch.Verses[tok.Verse] = v
		}
		v.Tokens = append(v.Tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, &coreerrors.ParseError{Format: "MorphGNT", Message: err.Error(), Err: err}
	}

	return chapters, stats, nil
}

// Reader loads MorphGNT books from a directory and caches them per book.
type Reader struct {
	dir    string
	cache  map[string]*Book
	logger *slog.Logger
}

// NewReader creates a Reader over the MorphGNT files in dir.
func NewReader(dir string) *Reader {
	return &Reader{
		dir:    dir,
		cache:  make(map[string]*Book),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for load diagnostics.
func (r *Reader) WithLogger(logger *slog.Logger) *Reader {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Dir returns the source directory.
func (r *Reader) Dir() string {
	return r.dir
}

// Book loads a whole book, reusing the cached copy on repeated calls.
func (r *Reader) Book(id string) (*Book, error) {
	info, ok := LookupBook(id)
	if !ok {
		return nil, unknownBook(id)
	}
	if b, ok := r.cache[info.ID]; ok {
		return b, nil
	}

	path := filepath.Join(r.dir, info.File)
	data, resolved, err := archive.ReadAll(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &coreerrors.SourceError{Path: path, Hint: DownloadHint, Err: ErrSourceMissing}
		}
		return nil, coreerrors.NewIO("read", path, err)
	}

	chapters, stats, err := Parse(data)
	if err != nil {
		var pe *coreerrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = resolved
		}
		return nil, err
	}
	if stats.Skipped > 0 {
		r.logger.Warn("skipped malformed MorphGNT records",
			"book", info.ID, "path", resolved, "skipped", stats.Skipped)
	}
	r.logger.Debug("loaded MorphGNT book",
		"book", info.ID, "path", resolved, "records", stats.Records, "chapters", len(chapters))

	b := &Book{Info: info, Chapters: chapters, Stats: stats}
	r.cache[info.ID] = b
	return b, nil
}

// Chapter returns one chapter of a book.
func (r *Reader) Chapter(id string, chapter int) (*Chapter, error) {
	b, err := r.Book(id)
	if err != nil {
		return nil, err
	}
	ch, ok := b.Chapters[chapter]
	if !ok {
		return nil, &coreerrors.NotFoundError{
			Resource: "chapter",
			ID:       fmt.Sprintf("%s %d", b.Info.ID, chapter),
			Err:      ErrChapterNotFound,
		}
	}
	return ch, nil
}

// ChapterText returns the numbered source text of a chapter.
func (r *Reader) ChapterText(id string, chapter int) (string, error) {
	ch, err := r.Chapter(id, chapter)
	if err != nil {
		return "", err
	}
	return ch.Text(), nil
}

// RangeText returns the numbered source text of verses start through end.
func (r *Reader) RangeText(id string, chapter, start, end int) (string, error) {
	if start < 1 || end < start {
		return "", coreerrors.NewValidation("verse range", fmt.Sprintf("invalid range %d-%d", start, end))
	}
	ch, err := r.Chapter(id, chapter)
	if err != nil {
		return "", err
	}
	return ch.Range(start, end), nil
}

func unknownBook(id string) error {
	return &coreerrors.NotFoundError{Resource: "book", ID: id, Err: ErrUnknownBook}
}
