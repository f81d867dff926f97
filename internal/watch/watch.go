// Package watch rebuilds books when their translation files change.
//
// The root directory holds one directory per book. Changes to files matching
// the chapter pattern are collected per book and handed to the rebuild
// function once the book has been quiet for the debounce delay.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/aitbible/internal/logging"
	"github.com/FocuswithJustin/aitbible/internal/markup"
)

// DefaultDebounce is used when New is given a non-positive delay.
const DefaultDebounce = 500 * time.Millisecond

// minTick bounds how often pending books are checked.
const minTick = time.Millisecond

// Rebuild regenerates the outputs of one book directory.
type Rebuild func(ctx context.Context, bookDir string) error

// Options configures a Watcher.
type Options struct {
	// Pattern selects chapter files relative to a book directory.
	// Empty means markup.ChapterGlob.
	Pattern string
	// Debounce is how long a book must be quiet before it is rebuilt.
	Debounce time.Duration
	// Skip lists directory names under the root that are not books.
	Skip []string
}

// Watcher tracks book directories under a root. All event handling happens
// on the goroutine calling Run.
type Watcher struct {
	root    string
	opts    Options
	rebuild Rebuild
	fsw     *fsnotify.Watcher
	skip    map[string]bool
	pending map[string]time.Time // book dir -> last change
}

// New creates a Watcher and registers every directory under root. Changes
// made after New returns are observed.
func New(root string, opts Options, rebuild Rebuild) (*Watcher, error) {
	if opts.Pattern == "" {
		opts.Pattern = markup.ChapterGlob
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    filepath.Clean(root),
		opts:    opts,
		rebuild: rebuild,
		fsw:     fsw,
		skip:    make(map[string]bool, len(opts.Skip)),
		pending: make(map[string]time.Time),
	}
	for _, name := range opts.Skip {
		w.skip[name] = true
	}

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is done or the watcher is closed.
// Rebuild failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(w.opts.Debounce/2, minTick))
	defer ticker.Stop()

	logging.InfoContext(ctx, "watching translations", "root", w.root, "pattern", w.opts.Pattern)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnContext(ctx, "watcher error", "error", err)

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// addTree watches dir and every directory below it that is not skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipped(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) skipped(name string) bool {
	return strings.HasPrefix(name, ".") || w.skip[name]
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logging.DebugContext(ctx, "watch add failed", "path", event.Name, "error", err)
			}
			// A new book directory may arrive with files already in it.
			if book, _, ok := w.locate(event.Name); ok && book == filepath.Clean(event.Name) {
				w.pending[book] = time.Now()
			}
			return
		}
	}

	book, rel, ok := w.locate(event.Name)
	if !ok || rel == "" {
		return
	}
	if match, _ := doublestar.Match(w.opts.Pattern, rel); !match {
		return
	}
	logging.DebugContext(ctx, "chapter changed", "book", filepath.Base(book), "file", rel, "op", event.Op.String())
	w.pending[book] = time.Now()
}

// locate splits path into its book directory and the slash-separated path
// inside that book.
func (w *Watcher) locate(path string) (book, rel string, ok bool) {
	r, err := filepath.Rel(w.root, path)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", "", false
	}
	parts := strings.SplitN(filepath.ToSlash(r), "/", 2)
	if w.skipped(parts[0]) {
		return "", "", false
	}
	book = filepath.Join(w.root, parts[0])
	if len(parts) == 2 {
		rel = parts[1]
	}
	return book, rel, true
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	for book, last := range w.pending {
		if now.Sub(last) < w.opts.Debounce {
			continue
		}
		delete(w.pending, book)
		if err := w.rebuild(ctx, book); err != nil {
			logging.WarnContext(ctx, "rebuild failed", "book", filepath.Base(book), "error", err)
		}
	}
}
