package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// WorldDetails is the story-world data woven into prompts. Themes, motifs and
// locations keep the document order of the source JSON: the prompt builder's
// first-match location lookup is order-sensitive, so a plain map would make
// it nondeterministic.
type WorldDetails struct {
	Themes    []Theme
	Motifs    []Motif
	Locations []Location
	Styles    map[string]string
}

// Theme groups related subthemes under a name.
type Theme struct {
	Name      string
	Subthemes []string
}

// Motif pairs a recurring element with its meaning.
type Motif struct {
	Name    string
	Meaning string
}

// Location describes a setting, with optional named places and rooms.
type Location struct {
	Name         string
	Description  string
	Significance string
	Places       []NamedDetail
	Rooms        []NamedDetail
}

// NamedDetail is an ordered name/description pair.
type NamedDetail struct {
	Name        string
	Description string
}

// LoadWorldDetails reads world data from a JSON file.
func LoadWorldDetails(path string) (*WorldDetails, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world details: %w", err)
	}
	var w WorldDetails
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode world details %s: %w", path, err)
	}
	return &w, nil
}

// UnmarshalJSON decodes world data while preserving object key order.
func (w *WorldDetails) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		switch key {
		case "themes":
			if err := decodeOrdered(dec, func(name string) error {
				var v struct {
					Subthemes []string `json:"subthemes"`
				}
				if err := dec.Decode(&v); err != nil {
					return err
				}
				w.Themes = append(w.Themes, Theme{Name: name, Subthemes: v.Subthemes})
				return nil
			}); err != nil {
				return fmt.Errorf("themes: %w", err)
			}
		case "motifs":
			if err := decodeOrdered(dec, func(name string) error {
				var meaning string
				if err := dec.Decode(&meaning); err != nil {
					return err
				}
				w.Motifs = append(w.Motifs, Motif{Name: name, Meaning: meaning})
				return nil
			}); err != nil {
				return fmt.Errorf("motifs: %w", err)
			}
		case "locations":
			if err := decodeOrdered(dec, func(name string) error {
				loc, err := decodeLocation(dec, name)
				if err != nil {
					return err
				}
				w.Locations = append(w.Locations, loc)
				return nil
			}); err != nil {
				return fmt.Errorf("locations: %w", err)
			}
		case "styles":
			if err := dec.Decode(&w.Styles); err != nil {
				return fmt.Errorf("styles: %w", err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
	}
	return consumeDelim(dec)
}

func decodeLocation(dec *json.Decoder, name string) (Location, error) {
	loc := Location{Name: name}
	if err := expectDelim(dec, '{'); err != nil {
		return loc, err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return loc, err
		}
		switch key {
		case "description":
			if err := dec.Decode(&loc.Description); err != nil {
				return loc, err
			}
		case "significance":
			if err := dec.Decode(&loc.Significance); err != nil {
				return loc, err
			}
		case "places":
			details, err := decodeNamedDetails(dec)
			if err != nil {
				return loc, err
			}
			loc.Places = details
		case "rooms":
			details, err := decodeNamedDetails(dec)
			if err != nil {
				return loc, err
			}
			loc.Rooms = details
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return loc, err
			}
		}
	}
	return loc, consumeDelim(dec)
}

func decodeNamedDetails(dec *json.Decoder) ([]NamedDetail, error) {
	var out []NamedDetail
	err := decodeOrdered(dec, func(name string) error {
		var desc string
		if err := dec.Decode(&desc); err != nil {
			return err
		}
		out = append(out, NamedDetail{Name: name, Description: desc})
		return nil
	})
	return out, err
}

// decodeOrdered walks a JSON object, invoking fn for each key. fn must
// consume the value via the same decoder.
func decodeOrdered(dec *json.Decoder, fn func(key string) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return consumeDelim(dec)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func consumeDelim(dec *json.Decoder) error {
	_, err := dec.Token()
	return err
}
