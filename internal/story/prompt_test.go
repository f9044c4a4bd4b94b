package story

import (
	"strings"
	"testing"
)

func testWorld() *WorldDetails {
	return &WorldDetails{
		Themes: []Theme{
			{Name: "decay", Subthemes: []string{"rot", "ruin"}},
			{Name: "memory", Subthemes: []string{"loss"}},
		},
		Motifs: []Motif{
			{Name: "ravens", Meaning: "omens of change"},
		},
		Locations: []Location{
			{
				Name:         "Hollow Spire",
				Description:  "a leaning tower",
				Significance: "seat of the old order",
				Rooms: []NamedDetail{
					{Name: "Observatory", Description: "shattered lenses"},
				},
			},
			{
				Name:         "Spire",
				Description:  "should never match first",
				Significance: "decoy",
			},
		},
		Styles: map[string]string{
			"dark fantasy": "Grim, sensory-heavy prose.",
		},
	}
}

func testProfiles() map[string]CharacterProfile {
	return map[string]CharacterProfile{
		"Mira": {
			Personality: "guarded",
			Backstory:   "exiled archivist",
			Goal:        "recover the lost index",
		},
	}
}

func TestBuildPrompt_KnownCharacterProfile(t *testing.T) {
	got := BuildPrompt(PromptInput{
		Style:     "dark fantasy",
		Character: "Mira",
	}, testProfiles(), testWorld())

	for _, want := range []string{
		"Write a chapter in the style of dark fantasy.",
		"Focus on the character of Mira:",
		"- Personality: guarded",
		"- Backstory: exiled archivist",
		"- Goal: recover the lost index",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildPrompt_UnknownCharacterGenericInstruction(t *testing.T) {
	got := BuildPrompt(PromptInput{Style: "noir", Character: "Stranger"}, testProfiles(), nil)
	want := "Focus on the character of Stranger, ensuring their actions and thoughts align with their established personality."
	if !strings.Contains(got, want) {
		t.Errorf("prompt missing generic character instruction:\n%s", got)
	}
}

func TestBuildPrompt_StylePromptOverridesStyleAndGuidance(t *testing.T) {
	got := BuildPrompt(PromptInput{
		Style:       "dark fantasy",
		StylePrompt: "sparse, clipped sentences",
	}, nil, testWorld())

	if !strings.Contains(got, `Write a chapter in the style described by: "sparse, clipped sentences"`) {
		t.Errorf("expected literal style prompt:\n%s", got)
	}
	if strings.Contains(got, "Style guidelines for") {
		t.Errorf("style guidance must be omitted when a style prompt is supplied:\n%s", got)
	}
}

func TestBuildPrompt_WorldStyleGuidance(t *testing.T) {
	got := BuildPrompt(PromptInput{Style: "dark fantasy"}, nil, testWorld())
	if !strings.Contains(got, "Style guidelines for dark fantasy:") {
		t.Errorf("expected style guidance:\n%s", got)
	}
	if !strings.Contains(got, "Grim, sensory-heavy prose.") {
		t.Errorf("expected guidance text:\n%s", got)
	}
}

func TestBuildPrompt_ThemesAndMotifs(t *testing.T) {
	got := BuildPrompt(PromptInput{Style: "noir"}, nil, testWorld())
	if !strings.Contains(got, "- decay: rot, ruin") {
		t.Errorf("expected theme enumeration:\n%s", got)
	}
	if !strings.Contains(got, "- ravens: omens of change") {
		t.Errorf("expected motif enumeration:\n%s", got)
	}
	// Themes keep document order.
	if strings.Index(got, "- decay:") > strings.Index(got, "- memory:") {
		t.Error("themes out of document order")
	}
}

func TestBuildPrompt_FirstMatchingLocationOnly(t *testing.T) {
	got := BuildPrompt(PromptInput{
		Style:     "noir",
		Situation: "a chase through the hollow spire at midnight",
	}, nil, testWorld())

	if !strings.Contains(got, "Setting details for Hollow Spire:") {
		t.Errorf("expected first matching location:\n%s", got)
	}
	if strings.Contains(got, "decoy") {
		t.Errorf("only the first matching location may be included:\n%s", got)
	}
	if !strings.Contains(got, "- Rooms within this location:") {
		t.Errorf("expected rooms block:\n%s", got)
	}
	if !strings.Contains(got, "  - Observatory: shattered lenses") {
		t.Errorf("expected nested room detail:\n%s", got)
	}
}

func TestBuildPrompt_NoLocationWithoutSituation(t *testing.T) {
	got := BuildPrompt(PromptInput{Style: "noir"}, nil, testWorld())
	if strings.Contains(got, "Setting details for") {
		t.Errorf("location section requires a situation:\n%s", got)
	}
}

func TestBuildPrompt_RevisionRequiresBothAttemptAndFeedback(t *testing.T) {
	// Previous attempt without feedback: section omitted.
	got := BuildPrompt(PromptInput{
		Style:           "noir",
		PreviousAttempt: "old draft",
	}, nil, nil)
	if strings.Contains(got, "Based on the previous attempt") {
		t.Errorf("revision section must be omitted without feedback:\n%s", got)
	}

	// Both present: section included with all four metric lines.
	got = BuildPrompt(PromptInput{
		Style:           "noir",
		PreviousAttempt: "old draft",
		Feedback: &Feedback{
			QualityScore:       0.42,
			RougeL:             0.13,
			LexicalDiversity:   0.77,
			SemanticSimilarity: 0.55,
		},
	}, nil, nil)
	for _, want := range []string{
		"Based on the previous attempt, please improve:",
		"previous quality score: 0.42",
		"previous ROUGE-L: 0.13",
		"Lexical diversity (previous score: 0.77)",
		"Semantic similarity to reference chunks (previous score: 0.55)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("revision section missing %q:\n%s", want, got)
		}
	}
}

func TestBuildPrompt_ContextAndClosing(t *testing.T) {
	got := BuildPrompt(PromptInput{Style: "noir", Context: "Source: a.txt\n\nchunk text"}, nil, nil)
	if !strings.Contains(got, "Use this context from existing materials:") {
		t.Errorf("expected context section:\n%s", got)
	}
	if !strings.HasSuffix(got, "Generate a cohesive chapter that advances the story while maintaining consistency.") {
		t.Errorf("expected closing instruction last:\n%s", got)
	}

	// Empty context: section omitted.
	got = BuildPrompt(PromptInput{Style: "noir"}, nil, nil)
	if strings.Contains(got, "Use this context") {
		t.Errorf("context section must be omitted when empty:\n%s", got)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	in := PromptInput{
		Style:     "dark fantasy",
		Character: "Mira",
		Situation: "standoff in the Hollow Spire",
	}
	a := BuildPrompt(in, testProfiles(), testWorld())
	b := BuildPrompt(in, testProfiles(), testWorld())
	if a != b {
		t.Error("identical inputs must produce identical prompts")
	}
}
