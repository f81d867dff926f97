package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/aitbible/internal/annotate"
	"github.com/FocuswithJustin/aitbible/internal/markup"
)

func sampleDocument() *markup.Document {
	doc := markup.NewDocument("john", "John")
	doc.Book.Chapters = []markup.Chapter{{
		Number:    1,
		NotesText: `**"Word" (v. 1)**: λόγος.`,
		Verses: []markup.Verse{
			{Number: 1, ParagraphStart: true, Text: "In the beginning was the Word.", Words: []markup.Word{{Text: "Ἐν", Lemma: "ἐν"}}},
			{Number: 2, Text: "He said, [JESUS]Come & see.[/JESUS]", Notes: []annotate.Note{{Term: "t", Explanation: "e"}}},
		},
	}}
	return doc
}

func TestFromDocument(t *testing.T) {
	data, err := FromDocument(sampleDocument()).Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["book"] != "John" {
		t.Errorf("book = %v", got["book"])
	}

	out := string(data)
	for _, want := range []string{
		`"chapter": 1`,
		`"verse": 1`,
		`"paragraphStart": true`,
		`"paragraphStart": false`,
		`"text": "He said, [JESUS]Come & see.[/JESUS]"`,
		`λόγος`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "lemma") || strings.Contains(out, `"term"`) {
		t.Error("JSON book should not carry Greek words or note entries")
	}
}

func TestFromDocument_Empty(t *testing.T) {
	data, err := FromDocument(markup.NewDocument("jude", "Jude")).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"chapters": []`) {
		t.Errorf("empty book should have an empty chapter list:\n%s", data)
	}
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"chapter_01.txt": "# John Chapter 1\n\n**1** In the beginning.\n",
		"chapter_02.txt": "# John Chapter 2\r\n\r\n**1** On the third day.\r\n# not a header",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	text, n, err := Combine(dir, "", "John")
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if n != 2 {
		t.Errorf("chapters = %d, want 2", n)
	}
	if !strings.HasPrefix(text, "# John\n# AIT Bible Translation\n") {
		t.Errorf("unexpected preamble:\n%s", text)
	}
	if strings.Contains(text, "Chapter 1") {
		t.Error("chapter headers should be stripped")
	}
	first := strings.Index(text, "In the beginning")
	second := strings.Index(text, "On the third day")
	if first < 0 || second < first {
		t.Errorf("chapters out of order:\n%s", text)
	}
	if !strings.Contains(text, "# not a header") {
		t.Error("only leading header lines should be stripped")
	}
	if got := strings.Count(text, rule); got != 3 {
		t.Errorf("rules = %d, want 3", got)
	}
}

func TestCombine_NoChapters(t *testing.T) {
	if _, _, err := Combine(t.TempDir(), "", "John"); !errors.Is(err, markup.ErrNoChapters) {
		t.Errorf("error = %v, want ErrNoChapters", err)
	}
}

func TestCombine_Pattern(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"chapter_01.txt":       "**1** In the beginning.\n",
		"part2/chapter_02.txt": "**1** On the third day.\n",
		"drafts/chapter_02.md": "**1** Draft.\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		pattern string
		want    int
	}{
		{"", 1},
		{"**/chapter_*.txt", 2},
		{"**/chapter_*", 3},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, n, err := Combine(dir, tt.pattern, "John")
			if err != nil {
				t.Fatalf("Combine() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("chapters = %d, want %d", n, tt.want)
			}
		})
	}
}
