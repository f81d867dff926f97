// Command aitbible builds the annotated edition: edition XML and JSON books
// from translation files, and glossary cross-references from the edition.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/aitbible/core/morph"
	corexml "github.com/FocuswithJustin/aitbible/core/xml"
	"github.com/FocuswithJustin/aitbible/internal/annotate"
	"github.com/FocuswithJustin/aitbible/internal/config"
	"github.com/FocuswithJustin/aitbible/internal/export"
	"github.com/FocuswithJustin/aitbible/internal/fileutil"
	"github.com/FocuswithJustin/aitbible/internal/glossary"
	"github.com/FocuswithJustin/aitbible/internal/logging"
	"github.com/FocuswithJustin/aitbible/internal/markup"
	"github.com/FocuswithJustin/aitbible/internal/validation"
	"github.com/FocuswithJustin/aitbible/internal/watch"
)

const version = "0.1.0"

// CLI defines the command-line interface for aitbible.
type CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Config file (default: ./aitbible.yaml if present)" type:"path"`
	GreekDir  string `name:"greek-dir" help:"Directory containing MorphGNT files" type:"path"`
	DataDir   string `name:"data-dir" help:"Directory for edition XML files" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`

	XML     XMLCmd     `cmd:"" name:"xml" help:"Export one book to edition XML"`
	XMLAll  XMLAllCmd  `cmd:"" name:"xml-all" help:"Export every book directory to edition XML"`
	Refs    RefsCmd    `cmd:"" help:"Recompute glossary cross-references from edition XML"`
	JSON    JSONCmd    `cmd:"" name:"json" help:"Export one book to the JSON book format"`
	JSONAll JSONAllCmd `cmd:"" name:"json-all" help:"Export every book directory to JSON"`
	Combine CombineCmd `cmd:"" help:"Combine chapter files into a single text file"`
	Greek   GreekCmd   `cmd:"" help:"Print Greek source text for a chapter or verse range"`
	Books   BooksCmd   `cmd:"" help:"List books and chapter counts"`
	Watch   WatchCmd   `cmd:"" help:"Re-export books when their chapter files change"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// env carries the resolved configuration into commands.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	stdout io.Writer
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.stdout, format, args...)
}

func (e *env) parser() *annotate.Parser {
	return &annotate.Parser{ParagraphWindow: e.cfg.ParagraphWindow}
}

// reconciler returns a Reconciler configured from e. A nil reader leaves out
// Greek words.
func (e *env) reconciler(reader *morph.Reader) *markup.Reconciler {
	r := markup.NewReconciler(nil)
	if reader != nil {
		r.Source = reader
	}
	r.Parser = e.parser()
	r.Pattern = e.cfg.ChapterPattern
	return r
}

// setup resolves the configuration file and flag overrides and starts the
// logger for this run.
func (c *CLI) setup(stdout io.Writer) (*env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	cfg.Merge(&config.Config{
		GreekDir: c.GreekDir,
		DataDir:  c.DataDir,
		Log:      config.LogConfig{Level: c.LogLevel, Format: c.LogFormat},
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitLogger(level, format)

	ctx, _ := logging.StartRun(context.Background())
	return &env{ctx: ctx, cfg: cfg, stdout: stdout}, nil
}

// XMLCmd exports one book to edition XML.
type XMLCmd struct {
	BookDir  string `arg:"" help:"Directory containing chapter translation files" type:"existingdir"`
	Output   string `short:"o" help:"Output XML file (default: <data-dir>/<book-id>.xml)" type:"path"`
	BookID   string `name:"book-id" help:"Book ID (default: directory name)"`
	BookName string `name:"book-name" help:"Book display name (default: from the book table)"`
	NoGreek  bool   `name:"no-greek" help:"Skip adding Greek word data"`
	Strict   bool   `help:"Fail when the Greek source for the book is unavailable"`
}

func (c *XMLCmd) Run(e *env) error {
	id := c.BookID
	if id == "" {
		id = strings.ToLower(filepath.Base(filepath.Clean(c.BookDir)))
	}
	name := c.BookName
	if name == "" {
		name = morph.DisplayName(id)
	}
	out := c.Output
	if out == "" {
		out = filepath.Join(e.cfg.DataDir, id+".xml")
	}

	var reader *morph.Reader
	if !c.NoGreek {
		reader = morph.NewReader(e.cfg.GreekDir)
	}
	return e.exportXML(reader, c.BookDir, id, name, out, c.Strict)
}

func (e *env) exportXML(reader *morph.Reader, dir, id, name, out string, strict bool) error {
	if err := validation.BookID(id); err != nil {
		return err
	}
	if err := validation.ValidatePath(out); err != nil {
		return err
	}
	r := e.reconciler(reader)
	r.Strict = strict

	doc, err := r.Book(e.ctx, dir, id, name)
	if err != nil {
		return err
	}

	data := doc.Marshal()
	if err := corexml.WellFormed(data); err != nil {
		return fmt.Errorf("edition for %s is malformed: %w", id, err)
	}
	changed, err := fileutil.WriteIfChanged(out, data, 0644)
	if err != nil {
		return err
	}
	logging.BookExported(e.ctx, id, out, len(doc.Book.Chapters), "verses", doc.VerseCount(), "changed", changed)
	e.printf("Exported %d chapters to %s\n", len(doc.Book.Chapters), out)
	return nil
}

// XMLAllCmd exports every book directory under the translations directory.
type XMLAllCmd struct {
	Dir     string `arg:"" optional:"" help:"Directory containing book folders (default: translations_dir)" type:"path"`
	NoGreek bool   `name:"no-greek" help:"Skip adding Greek word data"`
	Strict  bool   `help:"Fail a book when its Greek source is unavailable"`
}

func (c *XMLAllCmd) Run(e *env) error {
	dirs, err := bookDirs(c.dir(e))
	if err != nil {
		return err
	}

	// One reader per job; books share its cache.
	var reader *morph.Reader
	if !c.NoGreek {
		reader = morph.NewReader(e.cfg.GreekDir)
	}

	var errs []error
	count := 0
	for _, dir := range dirs {
		id := strings.ToLower(filepath.Base(dir))
		out := filepath.Join(e.cfg.DataDir, id+".xml")
		err := e.exportXML(reader, dir, id, morph.DisplayName(id), out, c.Strict)
		switch {
		case err == nil:
			count++
		case errors.Is(err, markup.ErrNoChapters):
			logging.WarnContext(e.ctx, "no chapter files", "book", id, "dir", dir)
		default:
			logging.ErrorContext(e.ctx, "book export failed", "book", id, "error", err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}

	e.printf("\nExported %d books to %s/\n", count, e.cfg.DataDir)
	return errors.Join(errs...)
}

func (c *XMLAllCmd) dir(e *env) string {
	if c.Dir != "" {
		return c.Dir
	}
	return e.cfg.TranslationsDir
}

// jsonDirName is the legacy JSON output folder kept inside the translations
// directory; it is not a book.
const jsonDirName = "json"

// bookDirs lists the subdirectories of root in name order.
func bookDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == jsonDirName || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, entry.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}

// RefsCmd recomputes greekAppearsIn for every glossary term.
type RefsCmd struct {
	Glossary string `help:"Glossary file (default: from config)" type:"path"`
	DryRun   bool   `name:"dry-run" help:"Print a diff instead of writing the glossary"`
}

func (c *RefsCmd) Run(e *env) error {
	path := c.Glossary
	if path == "" {
		path = e.cfg.Glossary
	}

	reg, err := glossary.Load(path)
	if err != nil {
		return err
	}

	corpus, files, err := glossary.LoadDir(e.cfg.DataDir)
	if err != nil {
		return err
	}
	logging.InfoContext(e.ctx, "edition loaded", "files", files, "books", len(corpus.Books), "verses", corpus.VerseCount())

	stats := glossary.Refresh(e.ctx, reg, corpus)
	for _, verr := range reg.Validate() {
		logging.WarnContext(e.ctx, "glossary check", "error", verr.Error())
	}
	e.printf("Total: %d terms with Greek refs, %d new references\n", stats.TermsWithDivergences, stats.Verses)

	if c.DryRun {
		reg.EnsureCategories()
		after, err := reg.Encode()
		if err != nil {
			return err
		}
		before, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		diff, err := glossary.Diff(filepath.Base(path), before, after)
		if err != nil {
			return err
		}
		if diff == "" {
			e.printf("No changes.\n")
			return nil
		}
		e.printf("%s", diff)
		return nil
	}

	changed, err := reg.Save(path)
	if err != nil {
		return err
	}
	if changed {
		e.printf("Updated %s\n", path)
	} else {
		e.printf("No changes to %s\n", path)
	}
	return nil
}

// JSONCmd exports one book to the JSON book format.
type JSONCmd struct {
	BookDir string `arg:"" help:"Directory containing chapter translation files" type:"existingdir"`
	Output  string `short:"o" help:"Output file (default: <json-dir>/<book>.json)" type:"path"`
}

func (c *JSONCmd) Run(e *env) error {
	name := filepath.Base(filepath.Clean(c.BookDir))
	out := c.Output
	if out == "" {
		out = filepath.Join(e.cfg.JSONDir, name+".json")
	}
	return e.exportJSON(c.BookDir, name, out)
}

func (e *env) exportJSON(dir, name, out string) error {
	r := e.reconciler(nil)

	id := strings.ToLower(name)
	if err := validation.BookID(id); err != nil {
		return err
	}
	if err := validation.ValidatePath(out); err != nil {
		return err
	}
	doc, err := r.Book(e.ctx, dir, id, morph.DisplayName(id))
	if err != nil {
		return err
	}

	data, err := export.FromDocument(doc).Marshal()
	if err != nil {
		return err
	}
	changed, err := fileutil.WriteIfChanged(out, data, 0644)
	if err != nil {
		return err
	}
	logging.BookExported(e.ctx, id, out, len(doc.Book.Chapters), "format", "json", "changed", changed)
	e.printf("Exported %d chapters to %s\n", len(doc.Book.Chapters), out)
	return nil
}

// JSONAllCmd exports every book directory to JSON.
type JSONAllCmd struct {
	Dir     string `arg:"" optional:"" help:"Directory containing book folders (default: translations_dir)" type:"path"`
	JSONDir string `name:"json-dir" short:"o" help:"JSON output directory (default: from config)" type:"path"`
}

func (c *JSONAllCmd) Run(e *env) error {
	root := c.Dir
	if root == "" {
		root = e.cfg.TranslationsDir
	}
	outDir := c.JSONDir
	if outDir == "" {
		outDir = e.cfg.JSONDir
	}

	dirs, err := bookDirs(root)
	if err != nil {
		return err
	}

	var errs []error
	count := 0
	for _, dir := range dirs {
		name := filepath.Base(dir)
		err := e.exportJSON(dir, name, filepath.Join(outDir, name+".json"))
		switch {
		case err == nil:
			count++
		case errors.Is(err, markup.ErrNoChapters):
			logging.WarnContext(e.ctx, "no chapter files", "book", name, "dir", dir)
		default:
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	e.printf("\nExported %d books to %s/\n", count, outDir)
	return errors.Join(errs...)
}

// CombineCmd joins a book's chapter files into one text file.
type CombineCmd struct {
	BookDir string `arg:"" help:"Directory containing chapter translation files" type:"existingdir"`
	Output  string `short:"o" help:"Output file (default: <book-dir>_complete.txt)" type:"path"`
}

func (c *CombineCmd) Run(e *env) error {
	dir := filepath.Clean(c.BookDir)
	out := c.Output
	if out == "" {
		out = dir + "_complete.txt"
	}

	if err := validation.ValidatePath(out); err != nil {
		return err
	}

	base := filepath.Base(dir)
	text, n, err := export.Combine(dir, e.cfg.ChapterPattern, morph.DisplayName(strings.ToLower(base)))
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(out, []byte(text), 0644); err != nil {
		return err
	}
	e.printf("Combined %d chapters into %s\n", n, out)
	return nil
}

// GreekCmd prints the Greek source for a chapter or a verse range.
type GreekCmd struct {
	Book    string `arg:"" help:"Book ID (e.g. matthew)"`
	Chapter int    `arg:"" help:"Chapter number"`
	Start   int    `arg:"" optional:"" help:"First verse"`
	End     int    `arg:"" optional:"" help:"Last verse (default: start)"`
}

func (c *GreekCmd) Run(e *env) error {
	reader := morph.NewReader(e.cfg.GreekDir).WithLogger(logging.LoggerFromContext(e.ctx))

	var (
		text string
		err  error
	)
	if c.Start > 0 {
		end := c.End
		if end == 0 {
			end = c.Start
		}
		text, err = reader.RangeText(c.Book, c.Chapter, c.Start, end)
	} else {
		text, err = reader.ChapterText(c.Book, c.Chapter)
	}
	if err != nil {
		return err
	}
	e.printf("%s\n", text)
	return nil
}

// BooksCmd lists the book table.
type BooksCmd struct{}

func (c *BooksCmd) Run(e *env) error {
	for _, b := range morph.Books() {
		status := "missing"
		if _, err := os.Stat(filepath.Join(e.cfg.GreekDir, b.File)); err == nil {
			status = "ok"
		}
		e.printf("%-16s %-18s %3d  %s\n", b.ID, b.Name, b.Chapters, status)
	}
	return nil
}

// WatchCmd re-exports books whenever their chapter files change.
type WatchCmd struct {
	Dir      string        `arg:"" optional:"" help:"Directory containing book folders (default: translations_dir)" type:"path"`
	NoGreek  bool          `name:"no-greek" help:"Skip adding Greek word data"`
	JSON     bool          `name:"json" help:"Also write JSON books to json_dir"`
	Debounce time.Duration `default:"500ms" help:"Quiet period before a changed book is rebuilt"`
}

func (c *WatchCmd) Run(e *env) error {
	root := c.Dir
	if root == "" {
		root = e.cfg.TranslationsDir
	}

	var reader *morph.Reader
	if !c.NoGreek {
		reader = morph.NewReader(e.cfg.GreekDir)
	}

	rebuild := func(_ context.Context, dir string) error {
		name := filepath.Base(dir)
		id := strings.ToLower(name)
		out := filepath.Join(e.cfg.DataDir, id+".xml")
		if err := e.exportXML(reader, dir, id, morph.DisplayName(id), out, false); err != nil {
			return err
		}
		if c.JSON {
			return e.exportJSON(dir, name, filepath.Join(e.cfg.JSONDir, name+".json"))
		}
		return nil
	}

	w, err := watch.New(root, watch.Options{
		Pattern:  e.cfg.ChapterPattern,
		Debounce: c.Debounce,
		Skip:     []string{jsonDirName},
	}, rebuild)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(e.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.printf("Watching %s (Ctrl-C to stop)\n", root)
	return w.Run(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	e.printf("aitbible version %s\n", version)
	return nil
}

func options() []kong.Option {
	return []kong.Option{
		kong.Name("aitbible"),
		kong.Description("AIT Bible - annotated edition pipeline"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}
}

// run parses args and executes the selected command.
func run(args []string, stdout io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli, options()...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	e, err := cli.setup(stdout)
	if err != nil {
		return err
	}
	return kctx.Run(e)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "aitbible: %v\n", err)
		os.Exit(1)
	}
}
