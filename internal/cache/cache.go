// Package cache is a content-addressed store of accepted chapters, keyed by a
// fingerprint of the generation parameters. The backing store is one flat
// JSON file: loaded fully on open, rewritten fully on every put. No eviction
// and no cross-process locking; concurrent writers lose updates last-writer-
// wins, which is accepted for a single-user tool.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry is the persisted result for one parameter fingerprint.
type Entry struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}

// StoreError reports an unreadable or unwritable cache file. Callers degrade
// to cache-bypass rather than aborting generation.
type StoreError struct {
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache store %s: %v", e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Fingerprint hashes generation parameters to a stable hex key. The value is
// round-tripped through a map so the digest depends only on field names and
// values, never on struct field order.
func Fingerprint(params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal cache params: %w", err)
	}
	var canonical map[string]any
	if err := json.Unmarshal(raw, &canonical); err != nil {
		return "", fmt.Errorf("canonicalize cache params: %w", err)
	}
	// Marshalling a map sorts keys lexicographically.
	normalized, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("normalize cache params: %w", err)
	}
	sum := sha256.Sum256(normalized)
	return fmt.Sprintf("%x", sum[:]), nil
}

// Store holds the cache mapping in memory, mirrored to a file.
type Store struct {
	path    string
	entries map[string]Entry
}

// Open loads the cache file. A missing file yields an empty cache. A corrupt
// or unreadable file yields a usable empty cache alongside a *StoreError so
// the caller can report it and proceed.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, &StoreError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.entries = make(map[string]Entry)
		return s, &StoreError{Path: path, Err: err}
	}
	return s, nil
}

// Get looks up an entry by key.
func (s *Store) Get(key string) (Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Put stores an entry and rewrites the whole backing file.
func (s *Store) Put(key string, entry Entry) error {
	s.entries[key] = entry

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StoreError{Path: s.path, Err: err}
		}
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return &StoreError{Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &StoreError{Path: s.path, Err: err}
	}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	return len(s.entries)
}
