// Package config loads tool configuration from an optional YAML file with
// environment-variable overrides. The loaded value is passed explicitly into
// every component that needs it; nothing reads configuration ambiently.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Paths      PathsConfig      `yaml:"paths"`
	Server     ServerConfig     `yaml:"server"`
	Ingest     IngestConfig     `yaml:"ingest"`

	// APIKey is never read from the YAML file, only from the environment.
	APIKey string `yaml:"-"`
}

type GenerationConfig struct {
	Model       string  `yaml:"model"`
	EmbedModel  string  `yaml:"embed_model"`
	Style       string  `yaml:"style"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type EvaluationConfig struct {
	MaxIterations   int     `yaml:"max_iterations"`
	MinQualityScore float64 `yaml:"min_quality_score"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type PathsConfig struct {
	Embeddings        string `yaml:"embeddings"`
	CharacterProfiles string `yaml:"character_profiles"`
	WorldDetails      string `yaml:"world_details"`
	CacheFile         string `yaml:"cache_file"`
	SessionDir        string `yaml:"session_dir"`
}

type ServerConfig struct {
	Port   string `yaml:"port"`
	APIKey string `yaml:"-"`
}

type IngestConfig struct {
	Workers int `yaml:"workers"`
}

// Error reports bad or missing configuration.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "configuration error: " + e.Reason
}

// Load reads the YAML file at path (skipped when path is empty or absent),
// applies environment overrides and fills defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, &Error{Reason: fmt.Sprintf("read %s: %v", path, err)}
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &Error{Reason: fmt.Sprintf("parse %s: %v", path, err)}
			}
		}
	}

	cfg.APIKey = envOr("GEMINI_API_KEY", cfg.APIKey)
	cfg.Generation.Model = envOr("NARRATIVE_MODEL", cfg.Generation.Model)
	cfg.Generation.EmbedModel = envOr("NARRATIVE_EMBED_MODEL", cfg.Generation.EmbedModel)
	cfg.Generation.Temperature = envFloat("NARRATIVE_TEMPERATURE", cfg.Generation.Temperature)
	cfg.Generation.MaxTokens = envInt("NARRATIVE_MAX_TOKENS", cfg.Generation.MaxTokens)
	cfg.Evaluation.MaxIterations = envInt("NARRATIVE_MAX_ITERATIONS", cfg.Evaluation.MaxIterations)
	cfg.Evaluation.MinQualityScore = envFloat("NARRATIVE_MIN_QUALITY", cfg.Evaluation.MinQualityScore)
	cfg.Paths.Embeddings = envOr("NARRATIVE_EMBEDDINGS", cfg.Paths.Embeddings)
	cfg.Paths.CacheFile = envOr("NARRATIVE_CACHE_FILE", cfg.Paths.CacheFile)
	cfg.Server.Port = envOr("PORT", cfg.Server.Port)
	cfg.Server.APIKey = os.Getenv("NARRATIVE_API_KEY")
	cfg.Ingest.Workers = envInt("NARRATIVE_INGEST_WORKERS", cfg.Ingest.Workers)

	fillDefaults(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Generation: GenerationConfig{
			Model:       "gemini-1.5-pro",
			EmbedModel:  "text-embedding-004",
			Style:       "dark fantasy",
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   8192,
		},
		Evaluation: EvaluationConfig{
			MaxIterations:   3,
			MinQualityScore: 0.7,
		},
		Chunking: ChunkingConfig{
			Size:    5000,
			Overlap: 200,
		},
		Paths: PathsConfig{
			Embeddings:        "data/embeddings.json",
			CharacterProfiles: "data/character_profiles.json",
			WorldDetails:      "data/world_details.json",
			CacheFile:         "data/story_cache.json",
			SessionDir:        "sessions",
		},
		Server: ServerConfig{
			Port: "8091",
		},
		Ingest: IngestConfig{
			Workers: 4,
		},
	}
}

func fillDefaults(cfg *Config) {
	d := defaults()
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = d.Generation.Model
	}
	if cfg.Generation.EmbedModel == "" {
		cfg.Generation.EmbedModel = d.Generation.EmbedModel
	}
	if cfg.Generation.Temperature <= 0 {
		cfg.Generation.Temperature = d.Generation.Temperature
	}
	if cfg.Generation.TopP <= 0 {
		cfg.Generation.TopP = d.Generation.TopP
	}
	if cfg.Generation.MaxTokens <= 0 {
		cfg.Generation.MaxTokens = d.Generation.MaxTokens
	}
	if cfg.Evaluation.MaxIterations <= 0 {
		cfg.Evaluation.MaxIterations = d.Evaluation.MaxIterations
	}
	if cfg.Evaluation.MinQualityScore <= 0 {
		cfg.Evaluation.MinQualityScore = d.Evaluation.MinQualityScore
	}
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = d.Chunking.Size
	}
	if cfg.Chunking.Overlap <= 0 {
		cfg.Chunking.Overlap = d.Chunking.Overlap
	}
	if cfg.Paths.Embeddings == "" {
		cfg.Paths.Embeddings = d.Paths.Embeddings
	}
	if cfg.Paths.CharacterProfiles == "" {
		cfg.Paths.CharacterProfiles = d.Paths.CharacterProfiles
	}
	if cfg.Paths.WorldDetails == "" {
		cfg.Paths.WorldDetails = d.Paths.WorldDetails
	}
	if cfg.Paths.CacheFile == "" {
		cfg.Paths.CacheFile = d.Paths.CacheFile
	}
	if cfg.Paths.SessionDir == "" {
		cfg.Paths.SessionDir = d.Paths.SessionDir
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Ingest.Workers <= 0 {
		cfg.Ingest.Workers = d.Ingest.Workers
	}
}

// Validate checks the fields every command needs. Commands with extra
// requirements (an API key, a server token) check those at startup.
func (c Config) Validate() error {
	if c.Chunking.Overlap >= c.Chunking.Size {
		return &Error{Reason: fmt.Sprintf("chunking overlap %d must be smaller than size %d", c.Chunking.Overlap, c.Chunking.Size)}
	}
	if c.Evaluation.MinQualityScore > 1 {
		return &Error{Reason: fmt.Sprintf("min_quality_score %.2f must not exceed 1.0", c.Evaluation.MinQualityScore)}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
