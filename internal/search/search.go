// Package search implements semantic retrieval over the embedded corpus and
// the assembly of retrieved chunks into prompt context.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
)

// Embedder turns text into a vector in the same space as the corpus
// embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// RankedChunk is one retrieval hit.
type RankedChunk struct {
	SourceID   string
	ChunkIndex int
	Similarity float64
}

// Retriever scores every chunk in the store against a query embedding.
// Linear scan; no index. Cost is O(total chunk count) per call.
type Retriever struct {
	embedder Embedder
	log      *slog.Logger
}

func NewRetriever(embedder Embedder, log *slog.Logger) *Retriever {
	return &Retriever{embedder: embedder, log: log}
}

// Search returns the topN most similar chunks, ordered by descending
// similarity. Ties keep store order (sorted source IDs, then chunk index), so
// repeated searches over the same store resolve identically. An embedding
// failure is returned as-is; callers treat it as "no chunks found".
func (r *Retriever) Search(ctx context.Context, query string, st *store.Store, topN int) ([]RankedChunk, error) {
	if st.Len() == 0 {
		return nil, nil
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.log.Error("query embedding failed", "query", query, "error", err)
		return nil, err
	}

	ranked := make([]RankedChunk, 0, st.TotalChunks())
	for _, id := range st.Sources() {
		doc, _ := st.Doc(id)
		for i, emb := range doc.ChunkEmbeddings {
			ranked = append(ranked, RankedChunk{
				SourceID:   id,
				ChunkIndex: i,
				Similarity: Cosine(queryEmbedding, emb),
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	r.log.Debug("semantic search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// Merge combines retrieval results from multiple queries, keeping one entry
// per (source, chunk) with the highest similarity seen, re-sorted descending.
func Merge(sets ...[]RankedChunk) []RankedChunk {
	type key struct {
		source string
		index  int
	}
	best := make(map[key]RankedChunk)
	var order []key

	for _, set := range sets {
		for _, rc := range set {
			k := key{rc.SourceID, rc.ChunkIndex}
			existing, seen := best[k]
			if !seen {
				best[k] = rc
				order = append(order, k)
			} else if rc.Similarity > existing.Similarity {
				best[k] = rc
			}
		}
	}

	merged := make([]RankedChunk, 0, len(order))
	for _, k := range order {
		merged = append(merged, best[k])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	return merged
}

// Cosine computes cosine similarity between two vectors. Mismatched lengths
// or zero vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
