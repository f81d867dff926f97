package morph

import (
	"sort"
	"strconv"
	"strings"
)

// Token is one morphologically tagged word from a MorphGNT record.
type Token struct {
	Book         int
	Chapter      int
	Verse        int
	PartOfSpeech string
	Parsing      string
	// Text is the surface form including punctuation.
	Text string
	// Word is the surface form with punctuation stripped.
	Word       string
	Normalized string
	Lemma      string
}

// Tokens that end with an opening mark take no space after them; tokens that
// start with a closing mark take no space before them.
var (
	openingMarks = []string{"(", "«", "—"}
	closingMarks = []string{",", ".", "·", ";", ":", ")", "»", "—"}
)

// Verse is the ordered run of tokens sharing one book, chapter and verse.
type Verse struct {
	Chapter int
	Number  int
	Tokens  []Token
}

// Text reconstructs the verse surface text. Adjacent tokens are joined by a
// single space unless the previous token ends with an opening mark or the next
// token starts with a closing mark.
func (v *Verse) Text() string {
	var sb strings.Builder
	for i, tok := range v.Tokens {
		if i > 0 && needsSpace(v.Tokens[i-1].Text, tok.Text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func needsSpace(prev, next string) bool {
	for _, m := range openingMarks {
		if strings.HasSuffix(prev, m) {
			return false
		}
	}
	for _, m := range closingMarks {
		if strings.HasPrefix(next, m) {
			return false
		}
	}
	return true
}

// Chapter maps verse numbers to verses.
type Chapter struct {
	Number int
	Verses map[int]*Verse
}

// VerseNumbers returns the chapter's verse numbers in ascending order.
func (c *Chapter) VerseNumbers() []int {
	nums := make([]int, 0, len(c.Verses))
	for n := range c.Verses {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Verse returns verse n, or nil.
func (c *Chapter) Verse(n int) *Verse {
	if c == nil {
		return nil
	}
	return c.Verses[n]
}

// Text renders the chapter as "<verse> <text>" lines in ascending verse order.
func (c *Chapter) Text() string {
	nums := c.VerseNumbers()
	if len(nums) == 0 {
		return ""
	}
	return c.Range(nums[0], nums[len(nums)-1])
}

// Range renders verses start through end inclusive, skipping verses the
// chapter does not have.
func (c *Chapter) Range(start, end int) string {
	var lines []string
	for n := start; n <= end; n++ {
		v, ok := c.Verses[n]
		if !ok {
			continue
		}
		lines = append(lines, strconv.Itoa(n)+" "+v.Text())
	}
	return strings.Join(lines, "\n")
}

// Book is a fully loaded MorphGNT book.
type Book struct {
	Info     BookInfo
	Chapters map[int]*Chapter
	Stats    ParseStats
}

// ChapterNumbers returns the loaded chapter numbers in ascending order.
func (b *Book) ChapterNumbers() []int {
	nums := make([]int, 0, len(b.Chapters))
	for n := range b.Chapters {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
