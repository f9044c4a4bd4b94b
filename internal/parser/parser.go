// Package parser converts source material files into plain text ready for
// chunking and embedding. Structure is deliberately discarded: the corpus
// store works on flat text, so every format reduces to a title and a body.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the flat result of parsing one source file.
type Document struct {
	Title string
	Text  string
}

// Parser extracts text from one file format.
type Parser interface {
	Parse(r io.Reader, filename string) (Document, error)
}

// SupportedExtensions lists file extensions ingestion can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
