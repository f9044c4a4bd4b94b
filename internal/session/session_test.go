package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wh0isdsmith/narr-ai-tive/internal/eval"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := Session{
		Name:      "The Docks",
		Request:   pipeline.Request{Query: "a heist", Style: "noir"},
		Text:      "Fog rolled in.",
		Metrics:   eval.Metrics{QualityScore: 0.8, WordCount: 3},
		CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}

	path, err := Save(dir, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "20260301-123000-the-docks.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != s.Text || got.Request.Query != s.Request.Query {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Metrics.QualityScore != 0.8 {
		t.Errorf("expected metrics to survive, got %+v", got.Metrics)
	}
}

func TestSave_UnnamedSession(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, Session{
		Text:      "x",
		CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "20260301-123000.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
}

func TestList_SortedChronologically(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	for _, ts := range times {
		if _, err := Save(dir, Session{Text: "x", CreatedAt: ts}); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Errorf("sessions out of order: %v", paths)
		}
	}
}

func TestList_MissingDir(t *testing.T) {
	paths, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir must list empty, got %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no sessions, got %v", paths)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Docks", "the-docks"},
		{"  Chapter 12!  ", "chapter-12"},
		{"___", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
