package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test helper functions

func createTestFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

const testGlossary = `{
  "terms": [
    {
      "id": "theos",
      "greek": "θεός",
      "lemma": "θεός",
      "aitRendering": "God",
      "traditional": "God",
      "category": "theological",
      "brief": "",
      "context": "",
      "appearsIn": []
    }
  ],
  "categories": {}
}
`

// createWorkspace lays out a project with one book and returns the config path.
func createWorkspace(t *testing.T) (root, cfgPath string) {
	t.Helper()
	root = t.TempDir()

	createTestFile(t, filepath.Join(root, "greek", "61-Mt-morphgnt.txt"),
		"010101 N- ----NSM- θεός θεός θεός θεός\n010102 V- 3AAI-S-- ἐγέννησεν ἐγέννησεν ἐγέννησεν γεννάω\n")
	createTestFile(t, filepath.Join(root, "output", "matthew", "chapter_01.txt"),
		"# Matthew Chapter 1\n\n**1** In the beginning was the Divine. **2** He fathered.\n")
	createTestFile(t, filepath.Join(root, "web", "glossary.json"), testGlossary)

	cfg := "greek_dir: " + filepath.Join(root, "greek") + "\n" +
		"translations_dir: " + filepath.Join(root, "output") + "\n" +
		"data_dir: " + filepath.Join(root, "web") + "\n" +
		"json_dir: " + filepath.Join(root, "json") + "\n" +
		"glossary: " + filepath.Join(root, "web", "glossary.json") + "\n" +
		"log:\n  level: error\n"
	cfgPath = createTestFile(t, filepath.Join(root, "aitbible.yaml"), cfg)
	return root, cfgPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	_, cfg := createWorkspace(t)
	out, err := runCLI(t, "--config", cfg, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "aitbible version "+version) {
		t.Errorf("output = %q", out)
	}
}

func TestXMLAllAndRefs(t *testing.T) {
	root, cfg := createWorkspace(t)

	out, err := runCLI(t, "--config", cfg, "xml-all")
	if err != nil {
		t.Fatalf("xml-all failed: %v", err)
	}
	if !strings.Contains(out, "Exported 1 books") {
		t.Errorf("xml-all output = %q", out)
	}

	xmlPath := filepath.Join(root, "web", "matthew.xml")
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		t.Fatalf("edition not written: %v", err)
	}
	for _, want := range []string{`<book id="matthew" name="Matthew">`, `<w lemma="θεός">θεός</w>`, "<text><p/>In the beginning was the Divine.</text>"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("edition missing %s", want)
		}
	}

	glossaryPath := filepath.Join(root, "web", "glossary.json")
	before, _ := os.ReadFile(glossaryPath)

	out, err = runCLI(t, "--config", cfg, "refs", "--dry-run")
	if err != nil {
		t.Fatalf("refs --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "Total: 1 terms with Greek refs, 1 new references") {
		t.Errorf("refs summary = %q", out)
	}
	if !strings.Contains(out, "+++ b/glossary.json") || !strings.Contains(out, `"book": "matthew"`) {
		t.Errorf("dry run should print a diff:\n%s", out)
	}
	after, _ := os.ReadFile(glossaryPath)
	if !bytes.Equal(before, after) {
		t.Error("dry run must not write the glossary")
	}

	if _, err := runCLI(t, "--config", cfg, "refs"); err != nil {
		t.Fatalf("refs failed: %v", err)
	}
	updated, _ := os.ReadFile(glossaryPath)
	if !strings.Contains(string(updated), `"greekAppearsIn": [`) || !strings.Contains(string(updated), `"loanword"`) {
		t.Errorf("glossary not updated:\n%s", updated)
	}

	out, err = runCLI(t, "--config", cfg, "refs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No changes") {
		t.Errorf("second refs run should be a no-op, got %q", out)
	}
}

func TestXMLCmd(t *testing.T) {
	root, cfg := createWorkspace(t)
	outPath := filepath.Join(root, "custom", "mt.xml")

	_, err := runCLI(t, "--config", cfg, "xml", filepath.Join(root, "output", "matthew"),
		"--no-greek", "--book-name", "Gospel of Matthew", "-o", outPath)
	if err != nil {
		t.Fatalf("xml failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "<greek>") {
		t.Error("--no-greek output has greek elements")
	}
	if !strings.Contains(string(data), `name="Gospel of Matthew"`) {
		t.Error("--book-name not applied")
	}
}

func TestXMLCmd_Strict(t *testing.T) {
	root, cfg := createWorkspace(t)
	if err := os.Remove(filepath.Join(root, "greek", "61-Mt-morphgnt.txt")); err != nil {
		t.Fatal(err)
	}

	book := filepath.Join(root, "output", "matthew")
	if _, err := runCLI(t, "--config", cfg, "xml", book); err != nil {
		t.Errorf("non-strict export should degrade, got %v", err)
	}
	if _, err := runCLI(t, "--config", cfg, "xml", book, "--strict"); err == nil {
		t.Error("strict export without Greek source should fail")
	}
}

func TestXMLCmd_InvalidBookID(t *testing.T) {
	root, cfg := createWorkspace(t)
	book := filepath.Join(root, "output", "matthew")

	for _, id := range []string{"../escape", "1 john"} {
		if _, err := runCLI(t, "--config", cfg, "xml", book, "--no-greek", "--book-id", id); err == nil {
			t.Errorf("xml --book-id %q should fail", id)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "escape.xml")); !os.IsNotExist(err) {
		t.Error("invalid book id wrote outside data dir")
	}
}

func TestExportCmds_InvalidOutputPath(t *testing.T) {
	root, cfg := createWorkspace(t)
	book := filepath.Join(root, "output", "matthew")
	bad := filepath.Join(root, "bad\tname.out")

	for _, cmd := range []string{"xml", "json", "combine"} {
		t.Run(cmd, func(t *testing.T) {
			args := []string{"--config", cfg, cmd, book, "-o", bad}
			if cmd == "xml" {
				args = append(args, "--no-greek")
			}
			if _, err := runCLI(t, args...); err == nil {
				t.Errorf("%s -o with a control character should fail", cmd)
			}
			if _, err := os.Stat(bad); !os.IsNotExist(err) {
				t.Errorf("%s wrote %q", cmd, bad)
			}
		})
	}
}

func TestWatchCmd_MissingDir(t *testing.T) {
	root, cfg := createWorkspace(t)
	if _, err := runCLI(t, "--config", cfg, "watch", filepath.Join(root, "absent")); err == nil {
		t.Error("watch on a missing directory should fail")
	}
}

func TestJSONCmd(t *testing.T) {
	root, cfg := createWorkspace(t)

	if _, err := runCLI(t, "--config", cfg, "json-all"); err != nil {
		t.Fatalf("json-all failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "json", "matthew.json"))
	if err != nil {
		t.Fatalf("json not written: %v", err)
	}
	if !strings.Contains(string(data), `"book": "Matthew"`) || !strings.Contains(string(data), `"paragraphStart": true`) {
		t.Errorf("unexpected JSON:\n%s", data)
	}
}

func TestCombineCmd(t *testing.T) {
	root, cfg := createWorkspace(t)
	book := filepath.Join(root, "output", "matthew")

	out, err := runCLI(t, "--config", cfg, "combine", book)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if !strings.Contains(out, "Combined 1 chapters") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(book + "_complete.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Matthew\n") {
		t.Errorf("combined text:\n%s", data)
	}
}

func TestGreekCmd(t *testing.T) {
	_, cfg := createWorkspace(t)

	out, err := runCLI(t, "--config", cfg, "greek", "matthew", "1")
	if err != nil {
		t.Fatalf("greek failed: %v", err)
	}
	if out != "1 θεός\n2 ἐγέννησεν\n" {
		t.Errorf("chapter text = %q", out)
	}

	out, err = runCLI(t, "--config", cfg, "greek", "matthew", "1", "2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 ἐγέννησεν") || strings.Contains(out, "θεός") {
		t.Errorf("range text = %q", out)
	}

	if _, err := runCLI(t, "--config", cfg, "greek", "tobit", "1"); err == nil {
		t.Error("unknown book should fail")
	}
}

func TestBooksCmd(t *testing.T) {
	_, cfg := createWorkspace(t)
	out, err := runCLI(t, "--config", cfg, "books")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 27 {
		t.Errorf("books = %d lines, want 27", len(lines))
	}
	if !strings.HasPrefix(lines[0], "matthew") || !strings.HasSuffix(lines[0], "ok") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "missing") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestGlobalFlagsOverrideConfig(t *testing.T) {
	root, cfg := createWorkspace(t)
	alt := filepath.Join(root, "alt")

	if _, err := runCLI(t, "--config", cfg, "--data-dir", alt, "xml-all", "--no-greek"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(alt, "matthew.xml")); err != nil {
		t.Errorf("--data-dir not honored: %v", err)
	}

	if _, err := runCLI(t, "--config", cfg, "--log-level", "chatty", "version"); err == nil {
		t.Error("invalid --log-level should fail")
	}
}
