package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
)

// DefaultOutlineWords bounds outline length when the caller does not.
const DefaultOutlineWords = 500

// PlotOutline generates a story outline from a one-line premise. The outline
// is meant to be fed back into a generation request as Request.PlotOutline.
func (c *Controller) PlotOutline(ctx context.Context, premise string, maxWords int) (string, error) {
	if strings.TrimSpace(premise) == "" {
		return "", &ValidationError{Field: "premise", Reason: "must not be empty"}
	}
	if maxWords <= 0 {
		maxWords = DefaultOutlineWords
	}

	prompt := fmt.Sprintf(
		"Generate a detailed plot outline for a story based on the following prompt (in approximately less than %d words):\n\n%s",
		maxWords, premise,
	)

	outline, err := c.gen.Generate(ctx, prompt, gemini.GenerateOptions{
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("plot outline: %w", err)
	}
	if strings.TrimSpace(outline) == "" {
		return "", fmt.Errorf("plot outline: model returned empty output")
	}
	return outline, nil
}
