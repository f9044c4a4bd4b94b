package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFingerprint_IndependentOfFieldOrder(t *testing.T) {
	type ab struct {
		Query string  `json:"query"`
		TopN  int     `json:"top_n"`
		Temp  float64 `json:"temperature"`
	}
	type ba struct {
		Temp  float64 `json:"temperature"`
		TopN  int     `json:"top_n"`
		Query string  `json:"query"`
	}

	k1, err := Fingerprint(ab{Query: "q", TopN: 3, Temp: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	k2, err := Fingerprint(ba{Query: "q", TopN: 3, Temp: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("fingerprint must be order-independent: %s != %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(k1))
	}
}

func TestFingerprint_DistinguishesValues(t *testing.T) {
	type params struct {
		Query string `json:"query"`
	}
	k1, _ := Fingerprint(params{Query: "a"})
	k2, _ := Fingerprint(params{Query: "b"})
	if k1 == k2 {
		t.Error("different values must produce different fingerprints")
	}
}

func TestFingerprint_EqualIndependentConstructions(t *testing.T) {
	type params struct {
		Query     string  `json:"query"`
		Style     string  `json:"style"`
		Character string  `json:"character"`
		Situation string  `json:"situation"`
		TopN      int     `json:"top_n"`
		Temp      float64 `json:"temperature"`
		MaxTokens int     `json:"max_tokens"`
	}
	a := params{"quest", "noir", "Mira", "docks", 3, 0.9, 8192}
	b := params{"quest", "noir", "Mira", "docks", 3, 0.9, 8192}
	k1, _ := Fingerprint(a)
	k2, _ := Fingerprint(b)
	if k1 != k2 {
		t.Error("independently constructed equal requests must share a key")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening fresh cache: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", s.Len())
	}

	entry := Entry{Text: "chapter text", Prompt: "the prompt"}
	if err := s.Put("key1", entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, ok := s.Get("key1")
	if !ok || got != entry {
		t.Errorf("expected %+v, got %+v (ok=%v)", entry, got, ok)
	}

	// Reopen from disk: entry survives.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error reopening cache: %v", err)
	}
	got, ok = s2.Get("key1")
	if !ok || got != entry {
		t.Errorf("expected persisted entry %+v, got %+v (ok=%v)", entry, got, ok)
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, _ := Open(path)

	s.Put("k", Entry{Text: "old", Prompt: "p"})
	s.Put("k", Entry{Text: "new", Prompt: "p"})

	got, _ := s.Get("k")
	if got.Text != "new" {
		t.Errorf("expected overwrite, got %q", got.Text)
	}
}

func TestOpen_CorruptFileUsableAndReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StoreError for corrupt file, got %v", err)
	}
	// The store is still usable as cache-empty.
	if s == nil || s.Len() != 0 {
		t.Fatal("corrupt cache must degrade to an empty usable store")
	}
	if err := s.Put("k", Entry{Text: "t", Prompt: "p"}); err != nil {
		t.Errorf("put after corrupt load failed: %v", err)
	}
}

func TestOpen_MissingDirCreatedOnPut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put("k", Entry{Text: "t", Prompt: "p"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("cache file not created: %v", statErr)
	}
}
