// Package pipeline runs the generate-evaluate-retry loop that turns a user
// query into an accepted chapter, and the job machinery that serves that loop
// over the HTTP API.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wh0isdsmith/narr-ai-tive/internal/cache"
	"github.com/wh0isdsmith/narr-ai-tive/internal/eval"
	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
	"github.com/wh0isdsmith/narr-ai-tive/internal/search"
	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
	"github.com/wh0isdsmith/narr-ai-tive/internal/story"
	"github.com/wh0isdsmith/narr-ai-tive/internal/textproc"
)

// Generator produces chapter text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error)
}

// Searcher retrieves the most relevant corpus chunks for a query.
type Searcher interface {
	Search(ctx context.Context, query string, st *store.Store, topN int) ([]search.RankedChunk, error)
}

// Evaluator scores a candidate chapter.
type Evaluator interface {
	Evaluate(ctx context.Context, text string, st *store.Store, topN int) eval.Metrics
}

// ValidationError reports a request that cannot be processed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Request describes one chapter to generate. The zero values of TopN,
// Temperature and MaxTokens mean "use the controller defaults".
type Request struct {
	Query       string  `json:"query"`
	Style       string  `json:"style"`
	Character   string  `json:"character"`
	Situation   string  `json:"situation"`
	TopN        int     `json:"top_n"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	StylePrompt string  `json:"style_prompt,omitempty"`
	PlotOutline string  `json:"plot_outline,omitempty"`
	Force       bool    `json:"force,omitempty"`
}

// Validate rejects requests the loop cannot act on.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if r.TopN < 0 {
		return &ValidationError{Field: "top_n", Reason: "must not be negative"}
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return &ValidationError{Field: "temperature", Reason: "must be between 0 and 2"}
	}
	if r.MaxTokens < 0 {
		return &ValidationError{Field: "max_tokens", Reason: "must not be negative"}
	}
	return nil
}

// cacheParams is the canonical parameter set hashed into the cache key. Two
// requests differing only in Force or plot outline reuse the same entry.
type cacheParams struct {
	Query       string  `json:"query"`
	Style       string  `json:"style"`
	Character   string  `json:"character"`
	Situation   string  `json:"situation"`
	TopN        int     `json:"top_n"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Outcome classifies how a generation run ended.
type Outcome string

const (
	// OutcomeDone means an iteration met the quality threshold.
	OutcomeDone Outcome = "done"
	// OutcomeExhausted means the iteration budget ran out; the best candidate
	// seen is returned anyway.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeCached means the result was served from the chapter cache.
	OutcomeCached Outcome = "cached"
)

// Iteration records one attempt inside a run.
type Iteration struct {
	Attempt int          `json:"attempt"`
	Metrics eval.Metrics `json:"metrics"`
	Empty   bool         `json:"empty,omitempty"`
}

// Result is the outcome of one generation run.
type Result struct {
	Text      string       `json:"text"`
	Prompt    string       `json:"prompt"`
	Metrics   eval.Metrics `json:"metrics"`
	History   []Iteration  `json:"history,omitempty"`
	FromCache bool         `json:"from_cache"`
	Outcome   Outcome      `json:"outcome"`
}

// ControllerConfig carries the loop's tunables.
type ControllerConfig struct {
	MaxIterations   int
	MinQualityScore float64
	TopN            int
	Temperature     float64
	TopP            float64
	MaxTokens       int
	Chunking        textproc.Config
}

// Controller owns one generation run at a time: retrieve context, build the
// prompt, call the model, score the output, and iterate until the quality
// threshold is met or the budget runs out.
type Controller struct {
	gen       Generator
	searcher  Searcher
	evaluator Evaluator
	cache     *cache.Store
	store     *store.Store
	profiles  map[string]story.CharacterProfile
	world     *story.WorldDetails
	cfg       ControllerConfig
	log       *slog.Logger
}

// NewController wires the loop. cache may be nil, which disables caching
// entirely; profiles and world may be nil or empty when the corresponding
// data files are absent.
func NewController(
	gen Generator,
	searcher Searcher,
	evaluator Evaluator,
	cacheStore *cache.Store,
	st *store.Store,
	profiles map[string]story.CharacterProfile,
	world *story.WorldDetails,
	cfg ControllerConfig,
	log *slog.Logger,
) *Controller {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	return &Controller{
		gen:       gen,
		searcher:  searcher,
		evaluator: evaluator,
		cache:     cacheStore,
		store:     st,
		profiles:  profiles,
		world:     world,
		cfg:       cfg,
		log:       log,
	}
}

// Generate runs the full loop for one request. It returns an error only when
// the request is invalid, the generation service fails hard, or every
// iteration produced empty output; metric and retrieval failures degrade
// inside the loop instead.
func (c *Controller) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	topN := req.TopN
	if topN == 0 {
		topN = c.cfg.TopN
	}
	opts := gemini.GenerateOptions{
		Temperature: req.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   req.MaxTokens,
	}
	if opts.Temperature == 0 {
		opts.Temperature = c.cfg.Temperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = c.cfg.MaxTokens
	}

	key := c.cacheKey(req, topN, opts)
	if key != "" && !req.Force {
		if entry, ok := c.cache.Get(key); ok {
			c.log.Info("serving cached chapter", "key", key)
			return &Result{
				Text:      entry.Text,
				Prompt:    entry.Prompt,
				Metrics:   c.evaluator.Evaluate(ctx, entry.Text, c.store, topN),
				FromCache: true,
				Outcome:   OutcomeCached,
			}, nil
		}
	}

	contextBlock := c.retrieveContext(ctx, req, topN)

	var (
		best        *Result
		prevText    string
		prevMetrics *eval.Metrics
	)

	for attempt := 1; attempt <= c.cfg.MaxIterations; attempt++ {
		prompt := c.buildPrompt(req, contextBlock, prevText, prevMetrics)

		text, err := c.gen.Generate(ctx, prompt, opts)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", attempt, err)
		}
		if strings.TrimSpace(text) == "" {
			c.log.Warn("model returned empty output", "attempt", attempt)
			if best != nil {
				best.History = append(best.History, Iteration{Attempt: attempt, Empty: true})
			}
			continue
		}

		metrics := c.evaluator.Evaluate(ctx, text, c.store, topN)
		c.log.Info("iteration scored",
			"attempt", attempt,
			"quality", metrics.QualityScore,
			"rouge_l", metrics.RougeL,
			"semantic_similarity", metrics.SemanticSimilarity,
		)

		if best == nil || metrics.QualityScore > best.Metrics.QualityScore {
			history := []Iteration{}
			if best != nil {
				history = best.History
			}
			best = &Result{
				Text:    text,
				Prompt:  prompt,
				Metrics: metrics,
				History: history,
				Outcome: OutcomeExhausted,
			}
		}
		best.History = append(best.History, Iteration{Attempt: attempt, Metrics: metrics})

		prevText = text
		prevMetrics = &metrics

		if best.Metrics.QualityScore >= c.cfg.MinQualityScore {
			best.Outcome = OutcomeDone
			break
		}
	}

	if best == nil {
		return nil, fmt.Errorf("all %d iterations produced empty output", c.cfg.MaxIterations)
	}

	if key != "" {
		if err := c.cache.Put(key, cache.Entry{Text: best.Text, Prompt: best.Prompt}); err != nil {
			c.log.Warn("cache write failed, continuing without cache", "error", err)
		}
	}
	return best, nil
}

// cacheKey returns "" when caching is unavailable, which disables both the
// lookup and the write for this run.
func (c *Controller) cacheKey(req Request, topN int, opts gemini.GenerateOptions) string {
	if c.cache == nil {
		return ""
	}
	key, err := cache.Fingerprint(cacheParams{
		Query:       req.Query,
		Style:       req.Style,
		Character:   req.Character,
		Situation:   req.Situation,
		TopN:        topN,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		c.log.Warn("cache key computation failed, bypassing cache", "error", err)
		return ""
	}
	return key
}

// retrieveContext searches the corpus for the query, and for the situation
// when one is given, merging hits per (source, chunk) with the highest
// similarity kept. Retrieval failures degrade to an empty block.
func (c *Controller) retrieveContext(ctx context.Context, req Request, topN int) string {
	queries := []string{req.Query}
	if s := strings.TrimSpace(req.Situation); s != "" && s != req.Query {
		queries = append(queries, s)
	}

	var sets [][]search.RankedChunk
	for _, q := range queries {
		ranked, err := c.searcher.Search(ctx, q, c.store, topN)
		if err != nil {
			c.log.Warn("retrieval failed, generating without context", "query", q, "error", err)
			continue
		}
		sets = append(sets, ranked)
	}

	merged := search.Merge(sets...)
	if topN > 0 && len(merged) > topN {
		merged = merged[:topN]
	}
	if len(merged) == 0 {
		c.log.Info("no relevant chunks found", "query", req.Query)
		return ""
	}
	return search.AssembleContext(c.store, merged, c.cfg.Chunking, c.log)
}

func (c *Controller) buildPrompt(req Request, contextBlock, prevText string, prevMetrics *eval.Metrics) string {
	in := story.PromptInput{
		Style:           req.Style,
		Character:       req.Character,
		Situation:       req.Situation,
		Context:         contextBlock,
		StylePrompt:     req.StylePrompt,
		PreviousAttempt: prevText,
	}
	if prevMetrics != nil {
		in.Feedback = &story.Feedback{
			QualityScore:       prevMetrics.QualityScore,
			RougeL:             prevMetrics.RougeL,
			LexicalDiversity:   prevMetrics.LexicalDiversity,
			SemanticSimilarity: prevMetrics.SemanticSimilarity,
		}
	}

	prompt := story.BuildPrompt(in, c.profiles, c.world)
	if req.PlotOutline != "" {
		prompt = fmt.Sprintf("Plot Outline:\n%s\n\n%s", req.PlotOutline, prompt)
	}
	return prompt
}
