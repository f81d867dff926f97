package glossary

import (
	"context"
	"sort"
	"strings"

	"github.com/FocuswithJustin/aitbible/internal/logging"
)

// Divergences returns the verses where one of the term's lemmas occurs, the
// verse is not already in AppearsIn, and the folded rendering is absent from
// the folded English text. Results are grouped by chapter with verses
// ascending, and groups are ordered by book then chapter. The result is never
// nil.
func Divergences(c *Corpus, t *Term) []Ref {
	refs := []Ref{}

	parts := LemmaParts(t.Lemma)
	rendering := Fold(strings.TrimSpace(t.AITRendering))
	if len(parts) == 0 || rendering == "" {
		return refs
	}

	appears := refSet(t.AppearsIn)

	type chapterKey struct {
		book    string
		chapter int
	}
	found := make(map[chapterKey][]int)

	for bookID, book := range c.Books {
		for chNum, ch := range book.Chapters {
			for vNum, v := range ch.Verses {
				if !v.hasAny(parts) {
					continue
				}
				if appears[verseKey{bookID, chNum, vNum}] {
					continue
				}
				if strings.Contains(v.folded, rendering) {
					continue
				}
				k := chapterKey{bookID, chNum}
				found[k] = append(found[k], vNum)
			}
		}
	}

	keys := make([]chapterKey, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].book != keys[j].book {
			return keys[i].book < keys[j].book
		}
		return keys[i].chapter < keys[j].chapter
	})

	for _, k := range keys {
		verses := found[k]
		sort.Ints(verses)
		refs = append(refs, Ref{Book: k.book, Chapter: k.chapter, Verses: verses})
	}
	return refs
}

func (v *Verse) hasAny(lemmas []string) bool {
	for _, l := range lemmas {
		if v.Lemmas[l] {
			return true
		}
	}
	return false
}

// RefreshStats summarizes a Refresh call.
type RefreshStats struct {
	Terms                int
	TermsWithDivergences int
	Verses               int
}

// Refresh recomputes DivergesIn for every term in r.
func Refresh(ctx context.Context, r *Registry, c *Corpus) RefreshStats {
	stats := RefreshStats{Terms: len(r.Terms)}
	for i := range r.Terms {
		t := &r.Terms[i]
		t.DivergesIn = Divergences(c, t)

		n := CountVerses(t.DivergesIn)
		if n > 0 {
			stats.TermsWithDivergences++
			stats.Verses += n
			logging.TermDivergences(ctx, t.ID, n, "rendering", t.AITRendering, "appears_in", CountVerses(t.AppearsIn))
		}
	}
	return stats
}
