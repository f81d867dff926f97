package markup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/core/morph"
	"github.com/FocuswithJustin/aitbible/internal/annotate"
	"github.com/FocuswithJustin/aitbible/internal/logging"
)

// ChapterGlob selects translation files inside a book directory.
const ChapterGlob = "chapter_*.txt"

// ChapterFiles lists the files under dir matching pattern, sorted. pattern is
// relative to dir and may use ** to reach nested directories; empty means
// ChapterGlob.
func ChapterFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = ChapterGlob
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, coreerrors.Wrapf(err, "listing %s", dir)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// ErrNoChapters is returned when a book directory holds no translation files.
var ErrNoChapters = errors.New("no chapter files")

// Source supplies Greek chapters. *morph.Reader implements it.
type Source interface {
	Chapter(book string, chapter int) (*morph.Chapter, error)
}

// Reconciler joins parsed translation chapters with Greek source chapters.
type Reconciler struct {
	// Source provides Greek words. When nil, no <greek> elements are written.
	Source Source
	Parser *annotate.Parser
	// Pattern selects chapter files; see ChapterFiles.
	Pattern string
	// Strict makes any source failure other than a missing chapter fatal.
	// Otherwise the book is written without Greek words.
	Strict bool
}

// NewReconciler returns a Reconciler reading Greek chapters from src.
func NewReconciler(src Source) *Reconciler {
	return &Reconciler{Source: src, Parser: annotate.NewParser()}
}

// Chapter builds a chapter from a parsed translation and its Greek source.
// source may be nil; verses it lacks get no words.
func (r *Reconciler) Chapter(parsed *annotate.ParsedChapter, source *morph.Chapter) Chapter {
	ch := Chapter{
		Number:    parsed.Number,
		Verses:    make([]Verse, 0, len(parsed.Verses)),
		NotesText: parsed.NotesText,
	}

	for _, pv := range parsed.Verses {
		v := Verse{
			Number:         pv.Number,
			ParagraphStart: pv.ParagraphStart,
			Text:           pv.Text,
			Notes:          pv.Notes,
		}
		if sv := source.Verse(pv.Number); sv != nil {
			v.Words = make([]Word, 0, len(sv.Tokens))
			for _, tok := range sv.Tokens {
				v.Words = append(v.Words, Word{Text: tok.Text, Lemma: tok.Lemma})
			}
		}
		ch.Verses = append(ch.Verses, v)
	}

	return ch
}

// Book reads every chapter file in dir and reconciles it into a document.
// Files whose chapter cannot be identified are skipped with a warning.
func (r *Reconciler) Book(ctx context.Context, dir, bookID, name string) (*Document, error) {
	paths, err := ChapterFiles(dir, r.Pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &coreerrors.NotFoundError{Resource: "chapter files", ID: dir, Err: ErrNoChapters}
	}

	parser := r.Parser
	if parser == nil {
		parser = annotate.NewParser()
	}

	var parsed []*annotate.ParsedChapter
	// chapter number -> file that supplied it; the first file in path order wins.
	seen := make(map[int]string, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := filepath.Base(path)
		pc, err := parser.ParseFile(path)
		if err != nil {
			logging.ChapterSkipped(ctx, bookID, file, err)
			continue
		}
		if kept, dup := seen[pc.Number]; dup {
			logging.ChapterSkipped(ctx, bookID, file, fmt.Errorf("duplicate chapter %d, keeping %s", pc.Number, kept))
			continue
		}
		seen[pc.Number] = file
		parsed = append(parsed, pc)
	}

	// Unpadded names (chapter_2, chapter_10) sort lexically out of order.
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Number < parsed[j].Number
	})

	doc := NewDocument(bookID, name)
	sourceDown := false

	for _, pc := range parsed {
		var src *morph.Chapter
		if r.Source != nil && !sourceDown {
			src, err = r.Source.Chapter(bookID, pc.Number)
			switch {
			case err == nil:
			case errors.Is(err, morph.ErrChapterNotFound):
				logging.DebugContext(ctx, "greek chapter unavailable", "book", bookID, "chapter", pc.Number)
			default:
				if r.Strict {
					return nil, coreerrors.Wrapf(err, "greek source for %s", bookID)
				}
				logging.SourceUnavailable(ctx, bookID, err)
				sourceDown = true
			}
		}
		doc.Book.Chapters = append(doc.Book.Chapters, r.Chapter(pc, src))
	}

	return doc, nil
}
