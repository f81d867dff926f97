// Package glossary maintains the terminology registry and cross-references
// its terms against the edition.
package glossary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	coreerrors "github.com/FocuswithJustin/aitbible/core/errors"
	"github.com/FocuswithJustin/aitbible/internal/fileutil"
)

// Ref lists verses of one chapter.
type Ref struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verses  []int  `json:"verses"`
}

// Category describes a term category.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Term is a glossary entry. DivergesIn lists verses where the lemma occurs
// but the rendering does not; it is recomputed on every refresh.
type Term struct {
	ID           string `json:"id"`
	Greek        string `json:"greek"`
	Lemma        string `json:"lemma"`
	AITRendering string `json:"aitRendering"`
	Traditional  string `json:"traditional"`
	Category     string `json:"category"`
	Brief        string `json:"brief"`
	Context      string `json:"context"`
	AppearsIn    []Ref  `json:"appearsIn"`
	DivergesIn   []Ref  `json:"greekAppearsIn"`
}

// Registry is the contents of glossary.json.
type Registry struct {
	Terms      []Term              `json:"terms"`
	Categories map[string]Category `json:"categories"`
}

// DefaultCategories returns the categories every registry carries.
func DefaultCategories() map[string]Category {
	return map[string]Category{
		"loanword": {
			Name:        "Loanwords",
			Description: "Greek terms retained in English because no single word captures the full meaning",
		},
		"theological": {
			Name:        "Theological Terms",
			Description: "Words where traditional translations carry theological baggage that may obscure the original sense",
		},
		"semantic-shift": {
			Name:        "Semantic Shifts",
			Description: "English words that have changed meaning since early translations, now obscuring the Greek",
		},
		"idiom": {
			Name:        "Idioms & Expressions",
			Description: "Phrases or expressions whose cultural context illuminates their meaning",
		},
		"textual-variant": {
			Name:        "Textual Variants",
			Description: "Places where manuscript evidence suggests a different reading than traditional translations",
		},
	}
}

// Decode parses registry JSON.
func Decode(data []byte) (*Registry, error) {
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &coreerrors.ParseError{Format: "glossary", Message: err.Error(), Err: err}
	}
	return &r, nil
}

// Load reads a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &coreerrors.NotFoundError{Resource: "glossary", ID: path, Err: err}
	}
	if err != nil {
		return nil, coreerrors.NewIO("read", path, err)
	}
	r, err := Decode(data)
	if err != nil {
		var pe *coreerrors.ParseError
		if coreerrors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return r, nil
}

// EnsureCategories adds any missing default category.
func (r *Registry) EnsureCategories() {
	if r.Categories == nil {
		r.Categories = make(map[string]Category)
	}
	for id, c := range DefaultCategories() {
		if _, ok := r.Categories[id]; !ok {
			r.Categories[id] = c
		}
	}
}

// Term returns the term with the given id, or nil.
func (r *Registry) Term(id string) *Term {
	for i := range r.Terms {
		if r.Terms[i].ID == id {
			return &r.Terms[i]
		}
	}
	return nil
}

// Encode renders the registry as indented JSON. Non-ASCII text is written
// as-is and empty reference lists as [].
func (r *Registry) Encode() ([]byte, error) {
	out := Registry{Terms: make([]Term, len(r.Terms)), Categories: r.Categories}
	for i, t := range r.Terms {
		if t.AppearsIn == nil {
			t.AppearsIn = []Ref{}
		}
		if t.DivergesIn == nil {
			t.DivergesIn = []Ref{}
		}
		out.Terms[i] = t
	}
	if out.Categories == nil {
		out.Categories = map[string]Category{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encoding glossary: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the registry to path with the default categories present. It
// reports whether the file changed.
func (r *Registry) Save(path string) (bool, error) {
	r.EnsureCategories()
	data, err := r.Encode()
	if err != nil {
		return false, err
	}
	return fileutil.WriteIfChanged(path, data, 0644)
}

// Validate checks category membership and that no verse is listed in both
// appearsIn and divergesIn of one term.
func (r *Registry) Validate() []error {
	var errs []error
	seen := make(map[string]bool)

	for _, t := range r.Terms {
		if t.ID == "" {
			errs = append(errs, coreerrors.NewValidation("id", fmt.Sprintf("term %q has no id", t.AITRendering)))
		} else if seen[t.ID] {
			errs = append(errs, coreerrors.NewValidation("id", fmt.Sprintf("duplicate term id %q", t.ID)))
		}
		seen[t.ID] = true

		if t.Category != "" {
			if _, ok := r.Categories[t.Category]; !ok {
				if _, ok := DefaultCategories()[t.Category]; !ok {
					errs = append(errs, coreerrors.NewValidation("category", fmt.Sprintf("term %q: unknown category %q", t.ID, t.Category)))
				}
			}
		}

		appears := refSet(t.AppearsIn)
		for _, key := range sortedKeys(refSet(t.DivergesIn)) {
			if appears[key] {
				errs = append(errs, coreerrors.NewValidation("greekAppearsIn",
					fmt.Sprintf("term %q: %s %d:%d listed in appearsIn too", t.ID, key.book, key.chapter, key.verse)))
			}
		}
	}
	return errs
}

type verseKey struct {
	book    string
	chapter int
	verse   int
}

func refSet(refs []Ref) map[verseKey]bool {
	set := make(map[verseKey]bool)
	for _, ref := range refs {
		for _, v := range ref.Verses {
			set[verseKey{ref.Book, ref.Chapter, v}] = true
		}
	}
	return set
}

func sortedKeys(set map[verseKey]bool) []verseKey {
	keys := make([]verseKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.book != b.book {
			return a.book < b.book
		}
		if a.chapter != b.chapter {
			return a.chapter < b.chapter
		}
		return a.verse < b.verse
	})
	return keys
}

// CountVerses returns the number of verses listed in refs.
func CountVerses(refs []Ref) int {
	n := 0
	for _, r := range refs {
		n += len(r.Verses)
	}
	return n
}
