// Package export writes accepted chapters to disk in text, markdown or HTML
// form.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// Chapter is the exportable unit.
type Chapter struct {
	Title string
	Text  string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 46em; margin: 2em auto; padding: 0 1em; font-family: Georgia, serif; line-height: 1.6; }
h1 { font-size: 1.6em; }
.meta { color: #777; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Exported {{.Date}}</p>
{{.Body}}
</body>
</html>
`))

// Write renders the chapter to path. The format follows the file extension:
// .html gets a full page with the text rendered from markdown, .md gets a
// title heading, anything else gets the raw text.
func Write(ch Chapter, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	var out []byte
	switch ext {
	case ".html", ".htm":
		rendered, err := renderHTML(ch)
		if err != nil {
			return err
		}
		out = rendered
	case ".md", ".markdown":
		out = []byte(fmt.Sprintf("# %s\n\n%s\n", ch.Title, ch.Text))
	default:
		out = []byte(ch.Text + "\n")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func renderHTML(ch Chapter) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(ch.Text), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, map[string]any{
		"Title": ch.Title,
		"Date":  time.Now().Format("2006-01-02"),
		"Body":  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return page.Bytes(), nil
}
