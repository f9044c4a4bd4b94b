package gemini

import "fmt"

// GenerationError reports a failed generation call.
type GenerationError struct {
	StatusCode int
	Message    string
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation service error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("generation service error: %s", truncate(e.Message, 200))
}

// Retryable reports whether the failure is transient (rate limit or server
// fault) and worth retrying from outside the generation loop.
func (e *GenerationError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// EmbeddingError reports a failed embedding call. Retrieval treats it as
// "no chunks found" and evaluation degrades the affected metric to zero.
type EmbeddingError struct {
	StatusCode int
	Message    string
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding service error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("embedding service error: %s", truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
