package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
)

type stubEmbedder struct {
	vec []float64
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return s.vec, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(map[string]store.Document{
		"a.txt": {
			Content:         "alpha text",
			ChunkEmbeddings: [][]float64{{1, 0}, {0, 1}},
			ChunkContent:    []string{"alpha one", "alpha two"},
		},
		"b.txt": {
			Content:         "beta text",
			ChunkEmbeddings: [][]float64{{0.6, 0.8}},
			ChunkContent:    []string{"beta one"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestSearch_RankedDescendingAndTruncated(t *testing.T) {
	r := NewRetriever(&stubEmbedder{vec: []float64{1, 0}}, discard())
	st := testStore(t)

	ranked, err := r.Search(context.Background(), "query", st, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Similarity > ranked[i-1].Similarity {
			t.Errorf("results not sorted descending at %d", i)
		}
	}
	// (a.txt, 0) has similarity 1.0 against the query embedding.
	if ranked[0].SourceID != "a.txt" || ranked[0].ChunkIndex != 0 {
		t.Errorf("expected top hit (a.txt, 0), got (%s, %d)", ranked[0].SourceID, ranked[0].ChunkIndex)
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	r := NewRetriever(&stubEmbedder{vec: []float64{1, 0}}, discard())
	empty, err := store.New(map[string]store.Document{})
	if err != nil {
		t.Fatal(err)
	}
	ranked, err := r.Search(context.Background(), "query", empty, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected empty result for empty store, got %d", len(ranked))
	}
}

func TestSearch_EmbeddingFailurePropagates(t *testing.T) {
	wantErr := errors.New("embedder down")
	r := NewRetriever(&stubEmbedder{err: wantErr}, discard())

	ranked, err := r.Search(context.Background(), "query", testStore(t), 3)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected embedder error, got %v", err)
	}
	if ranked != nil {
		t.Errorf("expected nil results on embedding failure, got %v", ranked)
	}
}

func TestSearch_StableTieOrder(t *testing.T) {
	// All chunks orthogonal to the query score 0; order must follow sorted
	// source IDs then chunk index.
	st, err := store.New(map[string]store.Document{
		"b.txt": {Content: "b", ChunkEmbeddings: [][]float64{{0, 1}}},
		"a.txt": {Content: "a", ChunkEmbeddings: [][]float64{{0, 1}, {0, 2}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := NewRetriever(&stubEmbedder{vec: []float64{1, 0}}, discard())
	ranked, err := r.Search(context.Background(), "query", st, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		source string
		index  int
	}{
		{"a.txt", 0}, {"a.txt", 1}, {"b.txt", 0},
	}
	for i, w := range want {
		if ranked[i].SourceID != w.source || ranked[i].ChunkIndex != w.index {
			t.Errorf("position %d: expected (%s, %d), got (%s, %d)",
				i, w.source, w.index, ranked[i].SourceID, ranked[i].ChunkIndex)
		}
	}
}

func TestMerge_KeepsHighestSimilarity(t *testing.T) {
	a := []RankedChunk{{SourceID: "doc1", ChunkIndex: 0, Similarity: 0.9}}
	b := []RankedChunk{
		{SourceID: "doc1", ChunkIndex: 0, Similarity: 0.7},
		{SourceID: "doc2", ChunkIndex: 1, Similarity: 0.8},
	}

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged chunks, got %d", len(merged))
	}
	if merged[0].SourceID != "doc1" || merged[0].Similarity != 0.9 {
		t.Errorf("expected (doc1, 0, 0.9) first, got %+v", merged[0])
	}
	if merged[1].SourceID != "doc2" || merged[1].Similarity != 0.8 {
		t.Errorf("expected (doc2, 1, 0.8) second, got %+v", merged[1])
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("expected empty merge, got %v", got)
	}
}
