package xml

import (
	"errors"
	"testing"
)

const sampleEdition = `<?xml version="1.0" encoding="UTF-8"?>
<ait version="1.0">
  <book id="john" name="John">
    <chapter num="1">
      <verse num="1">
        <text><p/>In the beginning was the <q who="God">Logos</q>.</text>
        <greek>
          <w lemma="ἐν">Ἐν</w>
          <w lemma="ἀρχή">ἀρχῇ</w>
        </greek>
        <note term="Logos">retained as a loanword.</note>
      </verse>
    </chapter>
  </book>
</ait>`

// TestParseValidXML verifies parsing of well-formed XML.
func TestParseValidXML(t *testing.T) {
	doc, err := Parse([]byte(sampleEdition))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if root == nil {
		t.Fatal("Root() returned nil")
	}
	if root.Name() != "ait" {
		t.Errorf("Root().Name() = %q, want %q", root.Name(), "ait")
	}
	if root.Attr("version") != "1.0" {
		t.Errorf("version = %q, want %q", root.Attr("version"), "1.0")
	}
}

// TestParseInvalidXML verifies error handling for malformed XML.
func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.xml))
			if err == nil {
				t.Error("Parse should fail for invalid XML")
			}
		})
	}
}

func TestWellFormed(t *testing.T) {
	if err := WellFormed([]byte(sampleEdition)); err != nil {
		t.Errorf("sample edition should be well-formed: %v", err)
	}

	err := WellFormed([]byte(`<text>a <q who="Jesus">b</text></q>`))
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("WellFormed() = %v, want *SyntaxError", err)
	}
	if se.Offset == 0 {
		t.Error("SyntaxError should carry the failing offset")
	}

	if err := WellFormed([]byte(`<text>&custom;</text>`)); err == nil {
		t.Error("undeclared entities should be rejected")
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleEdition))
	if err != nil {
		t.Fatal(err)
	}

	words, err := doc.XPath("//verse/greek/w")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[1].Attr("lemma") != "ἀρχή" {
		t.Errorf("lemma = %q, want %q", words[1].Attr("lemma"), "ἀρχή")
	}

	verse, err := doc.XPathFirst("//chapter[@num='1']/verse")
	if err != nil || verse == nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	num, err := verse.IntAttr("num")
	if err != nil || num != 1 {
		t.Errorf("IntAttr(num) = %d, %v", num, err)
	}

	text, err := verse.XPathFirst("text")
	if err != nil || text == nil {
		t.Fatalf("relative XPathFirst failed: %v", err)
	}
	if got := text.InnerText(); got != "In the beginning was the Logos." {
		t.Errorf("InnerText() = %q", got)
	}

	missing, err := doc.XPathFirst("//chapter[@num='9']")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for a query with no match")
	}

	if _, err := doc.XPath("//verse["); err == nil {
		t.Error("expected error for invalid xpath")
	}
}

func TestNodeAttrsAndChildText(t *testing.T) {
	doc, err := Parse([]byte(sampleEdition))
	if err != nil {
		t.Fatal(err)
	}
	verse, _ := doc.XPathFirst("//verse")

	if _, err := verse.IntAttr("missing"); err == nil {
		t.Error("IntAttr should fail for a missing attribute")
	}
	if _, err := verse.IntAttr("num"); err != nil {
		t.Errorf("IntAttr(num) error = %v", err)
	}

	note, err := verse.ChildText("note")
	if err != nil || note != "retained as a loanword." {
		t.Errorf("ChildText(note) = %q, %v", note, err)
	}
	absent, err := verse.ChildText("footnote")
	if err != nil || absent != "" {
		t.Errorf("ChildText(footnote) = %q, %v", absent, err)
	}
	if _, err := verse.ChildText("note["); err == nil {
		t.Error("ChildText should report an invalid expression")
	}
}
