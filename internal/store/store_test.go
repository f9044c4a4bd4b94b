package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validDocs() map[string]Document {
	return map[string]Document{
		"books/one.txt": {
			Content:         "chapter one text",
			ChunkEmbeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
			ChunkContent:    []string{"chapter one", "text"},
		},
		"books/two.txt": {
			Content:         "chapter two text",
			ChunkEmbeddings: [][]float64{{0.5, 0.6}},
		},
	}
}

func TestNew_SortedSources(t *testing.T) {
	s, err := New(validDocs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sources := s.Sources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0] != "books/one.txt" || sources[1] != "books/two.txt" {
		t.Errorf("sources not sorted: %v", sources)
	}
	if s.TotalChunks() != 3 {
		t.Errorf("expected 3 total chunks, got %d", s.TotalChunks())
	}
	if s.Dimensions() != 2 {
		t.Errorf("expected dimensionality 2, got %d", s.Dimensions())
	}
}

func TestNew_Rejections(t *testing.T) {
	cases := []struct {
		name string
		docs map[string]Document
	}{
		{
			"missing content",
			map[string]Document{"a": {ChunkEmbeddings: [][]float64{{1}}}},
		},
		{
			"missing embeddings",
			map[string]Document{"a": {Content: "text"}},
		},
		{
			"empty embedding vector",
			map[string]Document{"a": {Content: "text", ChunkEmbeddings: [][]float64{{}}}},
		},
		{
			"inconsistent dimensions",
			map[string]Document{"a": {Content: "text", ChunkEmbeddings: [][]float64{{1, 2}, {1}}}},
		},
		{
			"chunk text count mismatch",
			map[string]Document{"a": {
				Content:         "text",
				ChunkEmbeddings: [][]float64{{1, 2}},
				ChunkContent:    []string{"x", "y"},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.docs)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestNew_EmptyStore(t *testing.T) {
	s, err := New(map[string]Document{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 || s.TotalChunks() != 0 || s.Dimensions() != 0 {
		t.Error("empty store should report zero documents, chunks and dimensions")
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	data := `{"doc.txt":{"content":"hello world","chunk_embeddings":[[0.1,0.2]],"chunk_content":["hello world"]}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := s.Doc("doc.txt")
	if !ok {
		t.Fatal("expected doc.txt to be present")
	}
	if doc.Content != "hello world" {
		t.Errorf("unexpected content %q", doc.Content)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for corrupt file, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
