package morph

import (
	"strings"
)

// BookInfo describes one book of the MorphGNT corpus.
type BookInfo struct {
	// ID is the lowercase identifier used in paths and markup (e.g., "1corinthians").
	ID string
	// Name is the display name (e.g., "1 Corinthians").
	Name string
	// Number is the two-digit book code used in the BBCCVV column (1 = Matthew).
	Number int
	// File is the MorphGNT file name for the book.
	File string
	// Chapters is the number of chapters in the book.
	Chapters int
}

// books lists the New Testament in canonical order.
var books = []BookInfo{
	{"matthew", "Matthew", 1, "61-Mt-morphgnt.txt", 28},
	{"mark", "Mark", 2, "62-Mk-morphgnt.txt", 16},
	{"luke", "Luke", 3, "63-Lk-morphgnt.txt", 24},
	{"john", "John", 4, "64-Jn-morphgnt.txt", 21},
	{"acts", "Acts", 5, "65-Ac-morphgnt.txt", 28},
	{"romans", "Romans", 6, "66-Ro-morphgnt.txt", 16},
	{"1corinthians", "1 Corinthians", 7, "67-1Co-morphgnt.txt", 16},
	{"2corinthians", "2 Corinthians", 8, "68-2Co-morphgnt.txt", 13},
	{"galatians", "Galatians", 9, "69-Ga-morphgnt.txt", 6},
	{"ephesians", "Ephesians", 10, "70-Eph-morphgnt.txt", 6},
	{"philippians", "Philippians", 11, "71-Php-morphgnt.txt", 4},
	{"colossians", "Colossians", 12, "72-Col-morphgnt.txt", 4},
	{"1thessalonians", "1 Thessalonians", 13, "73-1Th-morphgnt.txt", 5},
	{"2thessalonians", "2 Thessalonians", 14, "74-2Th-morphgnt.txt", 3},
	{"1timothy", "1 Timothy", 15, "75-1Ti-morphgnt.txt", 6},
	{"2timothy", "2 Timothy", 16, "76-2Ti-morphgnt.txt", 4},
	{"titus", "Titus", 17, "77-Tit-morphgnt.txt", 3},
	{"philemon", "Philemon", 18, "78-Phm-morphgnt.txt", 1},
	{"hebrews", "Hebrews", 19, "79-Heb-morphgnt.txt", 13},
	{"james", "James", 20, "80-Jas-morphgnt.txt", 5},
	{"1peter", "1 Peter", 21, "81-1Pe-morphgnt.txt", 5},
	{"2peter", "2 Peter", 22, "82-2Pe-morphgnt.txt", 3},
	{"1john", "1 John", 23, "83-1Jn-morphgnt.txt", 5},
	{"2john", "2 John", 24, "84-2Jn-morphgnt.txt", 1},
	{"3john", "3 John", 25, "85-3Jn-morphgnt.txt", 1},
	{"jude", "Jude", 26, "86-Jud-morphgnt.txt", 1},
	{"revelation", "Revelation", 27, "87-Re-morphgnt.txt", 22},
}

var booksByID = func() map[string]BookInfo {
	m := make(map[string]BookInfo, len(books))
	for _, b := range books {
		m[b.ID] = b
	}
	return m
}()

// Books returns every known book in canonical order.
func Books() []BookInfo {
	out := make([]BookInfo, len(books))
	copy(out, books)
	return out
}

// LookupBook finds a book by identifier, ignoring case and surrounding space.
func LookupBook(id string) (BookInfo, bool) {
	b, ok := booksByID[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}

// ChapterCount returns the number of chapters in a book.
func ChapterCount(id string) (int, error) {
	b, ok := LookupBook(id)
	if !ok {
		return 0, unknownBook(id)
	}
	return b.Chapters, nil
}

// DisplayName returns the display name for id, or a title-cased id when the
// book is not in the table.
func DisplayName(id string) string {
	if b, ok := LookupBook(id); ok {
		return b.Name
	}
	if id == "" {
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}
