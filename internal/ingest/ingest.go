// Package ingest builds the embedded corpus: parse source files, chunk the
// text, embed every chunk, and write the embeddings JSON the store loads.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wh0isdsmith/narr-ai-tive/internal/parser"
	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
	"github.com/wh0isdsmith/narr-ai-tive/internal/textproc"
)

// Embedder turns chunk text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config controls one ingestion run.
type Config struct {
	Chunking textproc.Config
	Workers  int // Concurrent embedding calls; 1 when zero or negative.
}

// Result summarizes an ingestion run.
type Result struct {
	Documents int
	Chunks    int
	Skipped   []string
}

// Ingester converts source files into an embedded corpus.
type Ingester struct {
	embedder Embedder
	cfg      Config
	log      *slog.Logger
}

func New(embedder Embedder, cfg Config, log *slog.Logger) *Ingester {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Ingester{embedder: embedder, cfg: cfg, log: log}
}

// Run ingests every supported file under dir and writes the corpus to
// outPath. Files that fail to parse or embed are skipped and reported. The
// output is written only when at least one document survived and the result
// validates as a loadable corpus.
func (ing *Ingester) Run(ctx context.Context, dir, outPath string) (*Result, error) {
	paths, err := sourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported source files under %s", dir)
	}

	res := &Result{}
	docs := make(map[string]store.Document)

	for _, path := range paths {
		doc, chunks, err := ing.ingestFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ing.log.Warn("skipping source file", "path", path, "error", err)
			res.Skipped = append(res.Skipped, path)
			continue
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		docs[rel] = doc
		res.Documents++
		res.Chunks += chunks
		ing.log.Info("ingested source", "source", rel, "chunks", chunks)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no source files could be ingested (skipped %d)", len(res.Skipped))
	}

	// Validate before writing so the output always loads.
	if _, err := store.New(docs); err != nil {
		return nil, err
	}
	if err := writeCorpus(outPath, docs); err != nil {
		return nil, err
	}
	return res, nil
}

func (ing *Ingester) ingestFile(ctx context.Context, path string) (store.Document, int, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return store.Document{}, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return store.Document{}, 0, err
	}
	parsed, err := p.Parse(f, filepath.Base(path))
	f.Close()
	if err != nil {
		return store.Document{}, 0, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return store.Document{}, 0, fmt.Errorf("no extractable text")
	}

	chunks, err := textproc.Chunk(parsed.Text, ing.cfg.Chunking)
	if err != nil {
		return store.Document{}, 0, err
	}

	embeddings, err := ing.embedAll(ctx, chunks)
	if err != nil {
		return store.Document{}, 0, err
	}

	return store.Document{
		Content:         parsed.Text,
		ChunkEmbeddings: embeddings,
		ChunkContent:    chunks,
	}, len(chunks), nil
}

// embedAll embeds chunks with bounded concurrency, preserving chunk order.
// The first failure wins; remaining work still drains before returning.
func (ing *Ingester) embedAll(ctx context.Context, chunks []string) ([][]float64, error) {
	embeddings := make([][]float64, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, ing.cfg.Workers)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			defer func() { <-sem }()
			embeddings[i], errs[i] = ing.embedder.Embed(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
	}
	return embeddings, nil
}

func sourceFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if parser.IsSupportedExtension(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func writeCorpus(path string, docs map[string]store.Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}
