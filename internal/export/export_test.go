package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter.txt")
	ch := Chapter{Title: "The Docks", Text: "Fog rolled in."}

	if err := Write(ch, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Fog rolled in.\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWrite_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter.md")
	ch := Chapter{Title: "The Docks", Text: "Fog rolled in."}

	if err := Write(ch, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# The Docks\n\nFog rolled in.\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWrite_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter.html")
	ch := Chapter{Title: "The Docks", Text: "Fog *rolled* in."}

	if err := Write(ch, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	body := string(data)
	if !strings.Contains(body, "<title>The Docks</title>") {
		t.Error("expected page title")
	}
	if !strings.Contains(body, "<em>rolled</em>") {
		t.Errorf("expected markdown rendered to HTML, got:\n%s", body)
	}
}

func TestWrite_TitleEscaped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter.html")
	ch := Chapter{Title: `<script>x</script>`, Text: "text"}

	if err := Write(ch, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "<script>x</script>") {
		t.Error("title must be HTML-escaped")
	}
}

func TestWrite_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "chapter.txt")
	if err := Write(Chapter{Title: "t", Text: "x"}, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file not created: %v", err)
	}
}
