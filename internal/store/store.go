// Package store holds the pre-embedded corpus a generation session reads from.
// The store is produced by the ingestion pipeline, loaded wholesale at session
// start and never mutated afterwards.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Document is one source document with its per-chunk embeddings. ChunkContent
// may be absent; consumers re-chunk Content on demand when it is.
type Document struct {
	Content         string      `json:"content"`
	ChunkEmbeddings [][]float64 `json:"chunk_embeddings"`
	ChunkContent    []string    `json:"chunk_content,omitempty"`
}

// ValidationError reports a malformed corpus file.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid corpus: %s", e.Reason)
	}
	return fmt.Sprintf("invalid corpus entry %q: %s", e.Source, e.Reason)
}

// Store is an immutable in-memory view of the embedded corpus. Source IDs are
// kept sorted so every walk over the store is deterministic.
type Store struct {
	docs    map[string]Document
	sources []string
}

// New validates the document mapping and wraps it in a Store.
func New(docs map[string]Document) (*Store, error) {
	dim := 0
	for id, doc := range docs {
		if doc.Content == "" {
			return nil, &ValidationError{Source: id, Reason: "missing content"}
		}
		if len(doc.ChunkEmbeddings) == 0 {
			return nil, &ValidationError{Source: id, Reason: "missing chunk_embeddings"}
		}
		for i, emb := range doc.ChunkEmbeddings {
			if len(emb) == 0 {
				return nil, &ValidationError{Source: id, Reason: fmt.Sprintf("chunk %d has an empty embedding", i)}
			}
			if dim == 0 {
				dim = len(emb)
			} else if len(emb) != dim {
				return nil, &ValidationError{
					Source: id,
					Reason: fmt.Sprintf("chunk %d embedding has %d dimensions, expected %d", i, len(emb), dim),
				}
			}
		}
		if len(doc.ChunkContent) > 0 && len(doc.ChunkContent) != len(doc.ChunkEmbeddings) {
			return nil, &ValidationError{
				Source: id,
				Reason: fmt.Sprintf("%d chunk texts but %d embeddings", len(doc.ChunkContent), len(doc.ChunkEmbeddings)),
			}
		}
	}

	sources := make([]string, 0, len(docs))
	for id := range docs {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	return &Store{docs: docs, sources: sources}, nil
}

// Load reads and validates an embeddings JSON file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embeddings file: %w", err)
	}
	var docs map[string]Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("decode %s: %v", path, err)}
	}
	return New(docs)
}

// Sources returns source IDs in sorted order.
func (s *Store) Sources() []string {
	return s.sources
}

// Doc looks up a document by source ID.
func (s *Store) Doc(id string) (Document, bool) {
	d, ok := s.docs[id]
	return d, ok
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// TotalChunks returns the number of retrievable chunks across all documents.
func (s *Store) TotalChunks() int {
	n := 0
	for _, d := range s.docs {
		n += len(d.ChunkEmbeddings)
	}
	return n
}

// Dimensions returns the embedding dimensionality, or 0 for an empty store.
func (s *Store) Dimensions() int {
	for _, d := range s.docs {
		if len(d.ChunkEmbeddings) > 0 {
			return len(d.ChunkEmbeddings[0])
		}
	}
	return 0
}
