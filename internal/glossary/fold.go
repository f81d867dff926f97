package glossary

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the comparison form of s: NFC-normalized, then Unicode full
// case folded. Final sigma folds to sigma.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

var lemmaSeparator = regexp.MustCompile(`[,/\s]+`)

// LemmaParts splits a compound lemma such as "ζωή, αἰώνιος" or "ζωή/αἰώνιος"
// into folded forms, dropping empties and duplicates.
func LemmaParts(lemma string) []string {
	var parts []string
	seen := make(map[string]bool)
	for _, p := range lemmaSeparator.Split(strings.TrimSpace(lemma), -1) {
		p = Fold(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		parts = append(parts, p)
	}
	return parts
}
