package story

import (
	"encoding/json"
	"fmt"
	"os"
)

// CharacterProfile describes a character the prompt builder can focus on.
type CharacterProfile struct {
	Personality string `json:"personality"`
	Backstory   string `json:"backstory"`
	Goal        string `json:"goal"`
}

// LoadCharacterProfiles reads character profiles from a JSON file keyed by
// character name.
func LoadCharacterProfiles(path string) (map[string]CharacterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character profiles: %w", err)
	}
	var profiles map[string]CharacterProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode character profiles %s: %w", path, err)
	}
	return profiles, nil
}
