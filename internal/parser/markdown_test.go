package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_FlattensHeadings(t *testing.T) {
	input := `# The Hollow City

Intro text.

## The Docks

Fog and lanterns.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "lore.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first h1 supplies the title.
	if doc.Title != "The Hollow City" {
		t.Errorf("expected h1 title, got %q", doc.Title)
	}
	for _, want := range []string{"The Hollow City", "Intro text.", "The Docks", "Fog and lanterns."} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("expected text to contain %q, got %q", want, doc.Text)
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "plain" {
		t.Errorf("expected filename title for headingless file, got %q", doc.Title)
	}
	if doc.Text != "Just some plain text.\n\nAnother paragraph here." {
		t.Errorf("unexpected text %q", doc.Text)
	}
}

func TestMarkdownParser_CodeBlocksKept(t *testing.T) {
	input := "# Rituals\n\nThe incantation:\n\n```\nember and ash\nsalt and thread\n```\n\nSpoken at dusk.\n"

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "rituals.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(doc.Text, "ember and ash") {
		t.Errorf("expected code block content in text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Spoken at dusk.") {
		t.Errorf("expected post-code text, got %q", doc.Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("expected empty text, got %q", doc.Text)
	}
}

func TestMarkdownParser_TitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		doc, err := p.Parse(strings.NewReader("text without headings"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if doc.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, doc.Title)
		}
	}
}

func TestHTMLParser_BasicExtraction(t *testing.T) {
	input := `<html><head><title>Atlas of the North</title></head>
<body>
<h1>Atlas of the North</h1>
<p>The mountains are old.</p>
<script>ignored()</script>
<p>The rivers are older.</p>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "atlas.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Atlas of the North" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "The mountains are old.") {
		t.Errorf("expected paragraph text, got %q", doc.Text)
	}
	if strings.Contains(doc.Text, "ignored()") {
		t.Errorf("script content must be skipped, got %q", doc.Text)
	}
}

func TestHTMLParser_NoTitleTag(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<p>body only</p>"), "frag.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "frag" {
		t.Errorf("expected filename title, got %q", doc.Title)
	}
	if doc.Text != "body only" {
		t.Errorf("unexpected text %q", doc.Text)
	}
}
