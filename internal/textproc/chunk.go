// Package textproc implements the character-window chunking shared by the
// ingestion pipeline and the context assembler. Both sides must produce the
// same windows for stored chunk indices to stay meaningful.
package textproc

import "fmt"

const (
	DefaultChunkSize = 5000
	DefaultOverlap   = 200
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize int // Window size in characters.
	Overlap   int // Characters shared between consecutive windows.
}

// DefaultConfig returns the chunking defaults used across the tool.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// Validate rejects window configurations that would never terminate.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must be non-negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("overlap %d must be smaller than chunk size %d", c.Overlap, c.ChunkSize)
	}
	return nil
}

// Chunk splits text into fixed-size character windows. Windows advance by
// ChunkSize-Overlap; the final partial window is included even when shorter
// than ChunkSize. Sizes are measured in runes so multi-byte text does not
// split mid-character.
func Chunk(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	var chunks []string
	step := cfg.ChunkSize - cfg.Overlap

	for start := 0; start < len(runes); start += step {
		end := start + cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
