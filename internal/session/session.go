// Package session persists generation runs so earlier chapters can be
// reviewed or resumed later. One JSON file per session, named by timestamp.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wh0isdsmith/narr-ai-tive/internal/eval"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
)

// Session is one saved generation run.
type Session struct {
	Name      string           `json:"name"`
	Request   pipeline.Request `json:"request"`
	Text      string           `json:"text"`
	Metrics   eval.Metrics     `json:"metrics"`
	CreatedAt time.Time        `json:"created_at"`
}

// Save writes the session under dir, returning the file path used. The file
// name is the creation timestamp plus an optional name slug, so a directory
// listing sorts chronologically.
func Save(dir string, s Session) (string, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	name := s.CreatedAt.Format("20060102-150405")
	if slug := slugify(s.Name); slug != "" {
		name += "-" + slug
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write session: %w", err)
	}
	return path, nil
}

// Load reads one session file.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

// List returns session file paths under dir, oldest first. A missing
// directory lists as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// slugify reduces a session name to lowercase letters, digits and hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
