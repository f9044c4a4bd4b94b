// Package eval scores generated chapters against the embedded corpus. The
// metrics are deliberately simple heuristics; each one degrades to zero on
// failure so evaluation never aborts an otherwise-successful generation.
package eval

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/wh0isdsmith/narr-ai-tive/internal/search"
	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
)

// Metrics is the immutable scoring result for one candidate.
type Metrics struct {
	QualityScore       float64 `json:"quality_score"`
	Rouge1             float64 `json:"rouge_1"`
	Rouge2             float64 `json:"rouge_2"`
	RougeL             float64 `json:"rouge_l"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	WordCount          int     `json:"word_count"`
	SentenceCount      int     `json:"sentence_count"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	LexicalDiversity   float64 `json:"lexical_diversity"`
}

// Embedder turns text into a vector comparable with the corpus embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Scorer scores a text against a reference set. The quality metric sits
// behind this interface so a stronger implementation can replace the
// length-based placeholder without touching the iteration loop.
type Scorer interface {
	Score(text string, references []string) float64
}

// LengthScorer is the placeholder quality metric: character length capped at
// 1000 characters, scaled to [0, 1]. It claims nothing about linguistic
// quality.
type LengthScorer struct{}

func (LengthScorer) Score(text string, _ []string) float64 {
	score := float64(utf8.RuneCountInString(text)) / 1000.0
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Evaluator computes all metrics for a candidate text.
type Evaluator struct {
	embedder Embedder
	quality  Scorer
	log      *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithQualityScorer replaces the placeholder quality metric.
func WithQualityScorer(s Scorer) Option {
	return func(e *Evaluator) { e.quality = s }
}

func New(embedder Embedder, log *slog.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		embedder: embedder,
		quality:  LengthScorer{},
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores text against the store. The five computations are
// independent; a failure in one leaves the others intact.
func (e *Evaluator) Evaluate(ctx context.Context, text string, st *store.Store, topN int) Metrics {
	m := Metrics{
		QualityScore: e.quality.Score(text, nil),
	}

	rouge := computeRouge(text, referenceChunks(st, topN))
	m.Rouge1 = rouge.Rouge1
	m.Rouge2 = rouge.Rouge2
	m.RougeL = rouge.RougeL

	m.SemanticSimilarity = e.semanticSimilarity(ctx, text, st)

	words := strings.Fields(text)
	m.WordCount = len(words)
	m.SentenceCount = len(strings.Split(text, "."))
	m.AvgSentenceLength = float64(m.WordCount) / float64(max(1, m.SentenceCount))
	m.LexicalDiversity = lexicalDiversity(words)

	return m
}

// referenceChunks flattens every document's chunk-text list in store order
// and keeps the first topN. This is the reference set for ROUGE; it is not
// similarity-ranked.
func referenceChunks(st *store.Store, topN int) []string {
	var refs []string
	for _, id := range st.Sources() {
		doc, _ := st.Doc(id)
		refs = append(refs, doc.ChunkContent...)
	}
	if topN > 0 && len(refs) > topN {
		refs = refs[:topN]
	}
	return refs
}

// semanticSimilarity is the mean cosine similarity between the text embedding
// and every chunk embedding in the store. Empty store or embedding failure
// scores zero.
func (e *Evaluator) semanticSimilarity(ctx context.Context, text string, st *store.Store) float64 {
	total := st.TotalChunks()
	if total == 0 {
		return 0
	}

	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.log.Error("semantic similarity embedding failed", "error", err)
		return 0
	}

	var sum float64
	for _, id := range st.Sources() {
		doc, _ := st.Doc(id)
		for _, chunkEmbedding := range doc.ChunkEmbeddings {
			sum += search.Cosine(embedding, chunkEmbedding)
		}
	}
	return sum / float64(total)
}

// lexicalDiversity is unique tokens over total tokens; zero for empty text.
func lexicalDiversity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}
