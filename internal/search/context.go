package search

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
	"github.com/wh0isdsmith/narr-ai-tive/internal/textproc"
)

// contentFallbackSize bounds the raw-content fallback used when a stored
// chunk index no longer matches the recomputed chunking.
const contentFallbackSize = 5000

// AssembleContext formats ranked chunks into a single prompt-ready block.
// Chunk text comes from the document's precomputed chunk list when present,
// otherwise the content is re-chunked with cfg. A stale index falls back to
// the first 5000 characters of the document, labelled without a chunk number.
func AssembleContext(st *store.Store, ranked []RankedChunk, cfg textproc.Config, log *slog.Logger) string {
	var parts []string

	for _, rc := range ranked {
		doc, ok := st.Doc(rc.SourceID)
		if !ok {
			log.Warn("ranked chunk references unknown source", "source", rc.SourceID)
			continue
		}

		chunks := doc.ChunkContent
		if len(chunks) == 0 {
			recomputed, err := textproc.Chunk(doc.Content, cfg)
			if err != nil {
				log.Warn("re-chunking failed", "source", rc.SourceID, "error", err)
			}
			chunks = recomputed
		}

		name := filepath.Base(rc.SourceID)
		var text, source string
		if rc.ChunkIndex >= 0 && rc.ChunkIndex < len(chunks) {
			text = chunks[rc.ChunkIndex]
			source = fmt.Sprintf("%s (chunk %d)", name, rc.ChunkIndex+1)
		} else {
			log.Warn("invalid chunk index", "source", rc.SourceID, "index", rc.ChunkIndex)
			text = firstRunes(doc.Content, contentFallbackSize)
			source = name
		}

		parts = append(parts, fmt.Sprintf("Source: %s\nRelevance: %.2f\n\n%s\n", source, rc.Similarity, text))
	}

	return strings.Join(parts, "\n---\n")
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
