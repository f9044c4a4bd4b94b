// Package story holds the narrative inputs (character profiles, world
// details) and the deterministic prompt assembly built from them.
package story

import (
	"fmt"
	"strings"
)

// Feedback carries the prior iteration's metric values into a revision
// prompt.
type Feedback struct {
	QualityScore       float64
	RougeL             float64
	LexicalDiversity   float64
	SemanticSimilarity float64
}

// PromptInput is everything BuildPrompt needs for one prompt. Sections with
// no applicable data are omitted entirely.
type PromptInput struct {
	Style           string
	Character       string
	Situation       string
	Context         string
	StylePrompt     string
	PreviousAttempt string
	Feedback        *Feedback
}

// BuildPrompt composes the chapter-generation instruction. Pure function:
// identical inputs always produce the identical string. Section order is
// fixed; the location section includes at most the first location whose name
// appears case-insensitively inside the situation, in world-data order.
func BuildPrompt(in PromptInput, profiles map[string]CharacterProfile, world *WorldDetails) string {
	var lines []string

	if in.StylePrompt != "" {
		lines = append(lines, fmt.Sprintf("Write a chapter in the style described by: %q", in.StylePrompt))
	} else {
		lines = append(lines, fmt.Sprintf("Write a chapter in the style of %s.", in.Style))
	}

	if in.Character != "" {
		if profile, ok := profiles[in.Character]; ok {
			lines = append(lines,
				fmt.Sprintf("Focus on the character of %s:", in.Character),
				fmt.Sprintf("- Personality: %s", profile.Personality),
				fmt.Sprintf("- Backstory: %s", profile.Backstory),
				fmt.Sprintf("- Goal: %s", profile.Goal),
			)
		} else {
			lines = append(lines, fmt.Sprintf(
				"Focus on the character of %s, ensuring their actions and thoughts align with their established personality.",
				in.Character))
		}
	}

	if in.Situation != "" {
		lines = append(lines, fmt.Sprintf("The situation involves: %s", in.Situation))
	}

	if world != nil && len(world.Themes) > 0 {
		lines = append(lines, "\nIncorporate the following themes:")
		for _, theme := range world.Themes {
			lines = append(lines, fmt.Sprintf("- %s: %s", theme.Name, strings.Join(theme.Subthemes, ", ")))
		}
	}

	if world != nil && len(world.Motifs) > 0 {
		lines = append(lines, "\nUse the following motifs:")
		for _, motif := range world.Motifs {
			lines = append(lines, fmt.Sprintf("- %s: %s", motif.Name, motif.Meaning))
		}
	}

	if in.Situation != "" && world != nil {
		if loc, ok := matchLocation(world.Locations, in.Situation); ok {
			lines = append(lines,
				fmt.Sprintf("\nSetting details for %s:", loc.Name),
				fmt.Sprintf("- Description: %s", loc.Description),
				fmt.Sprintf("- Significance: %s", loc.Significance),
			)
			if len(loc.Places) > 0 {
				lines = append(lines, "- Notable places within this location:")
				for _, place := range loc.Places {
					lines = append(lines, fmt.Sprintf("  - %s: %s", place.Name, place.Description))
				}
			}
			if len(loc.Rooms) > 0 {
				lines = append(lines, "- Rooms within this location:")
				for _, room := range loc.Rooms {
					lines = append(lines, fmt.Sprintf("  - %s: %s", room.Name, room.Description))
				}
			}
		}
	}

	if in.StylePrompt == "" && world != nil {
		if guidance, ok := world.Styles[in.Style]; ok && guidance != "" {
			lines = append(lines,
				fmt.Sprintf("\nStyle guidelines for %s:", in.Style),
				guidance,
			)
		}
	}

	if in.PreviousAttempt != "" && in.Feedback != nil {
		lines = append(lines,
			"\nBased on the previous attempt, please improve:",
			fmt.Sprintf("- Overall narrative quality (previous quality score: %.2f)", in.Feedback.QualityScore),
			fmt.Sprintf("- Narrative coherence (previous ROUGE-L: %.2f)", in.Feedback.RougeL),
			fmt.Sprintf("- Lexical diversity (previous score: %.2f)", in.Feedback.LexicalDiversity),
			fmt.Sprintf("- Semantic similarity to reference chunks (previous score: %.2f)", in.Feedback.SemanticSimilarity),
			"While maintaining the strong elements of the original.",
		)
	}

	if in.Context != "" {
		lines = append(lines,
			"\nUse this context from existing materials:",
			in.Context,
		)
	}

	lines = append(lines, "\nGenerate a cohesive chapter that advances the story while maintaining consistency.")

	return strings.Join(lines, "\n")
}

// matchLocation returns the first location whose name appears, case
// insensitively, as a substring of the situation.
func matchLocation(locations []Location, situation string) (Location, bool) {
	lower := strings.ToLower(situation)
	for _, loc := range locations {
		if strings.Contains(lower, strings.ToLower(loc.Name)) {
			return loc, true
		}
	}
	return Location{}, false
}
