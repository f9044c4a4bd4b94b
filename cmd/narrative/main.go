// Command narrative generates story chapters grounded in an embedded corpus.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/cache"
	"github.com/wh0isdsmith/narr-ai-tive/internal/config"
	"github.com/wh0isdsmith/narr-ai-tive/internal/eval"
	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
	"github.com/wh0isdsmith/narr-ai-tive/internal/search"
	"github.com/wh0isdsmith/narr-ai-tive/internal/store"
	"github.com/wh0isdsmith/narr-ai-tive/internal/story"
	"github.com/wh0isdsmith/narr-ai-tive/internal/textproc"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "narrative",
		Short: "Generate story chapters grounded in an embedded corpus",
		Long: "narrative retrieves the most relevant passages from a pre-embedded corpus,\n" +
			"assembles them into a generation prompt, and iterates with the Gemini API\n" +
			"until a chapter meets the configured quality threshold.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	app := &appContext{configPath: &configPath, verbose: &verbose}

	rootCmd.AddCommand(newGenerateCommand(app))
	rootCmd.AddCommand(newPlotCommand(app))
	rootCmd.AddCommand(newIngestCommand(app))
	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newSessionsCommand(app))
	rootCmd.AddCommand(newExportCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appContext defers config and logger construction until a subcommand runs,
// after flags are parsed.
type appContext struct {
	configPath *string
	verbose    *bool
}

func (a *appContext) logger() *slog.Logger {
	level := slog.LevelInfo
	if *a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (a *appContext) config() (config.Config, error) {
	cfg, err := config.Load(*a.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// engine bundles everything a generation command needs.
type engine struct {
	cfg    config.Config
	log    *slog.Logger
	client *gemini.Client
	store  *store.Store
	ctrl   *pipeline.Controller
}

// buildEngine loads the corpus and wires the controller. Profile, world and
// cache files are optional; their absence degrades the relevant feature
// instead of failing startup.
func buildEngine(a *appContext) (*engine, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	log := a.logger()

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	st, err := store.Load(cfg.Paths.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	log.Info("corpus loaded",
		"documents", st.Len(),
		"chunks", st.TotalChunks(),
		"dimensions", st.Dimensions(),
	)

	profiles, err := story.LoadCharacterProfiles(cfg.Paths.CharacterProfiles)
	if err != nil {
		log.Warn("character profiles unavailable", "path", cfg.Paths.CharacterProfiles, "error", err)
	}
	world, err := story.LoadWorldDetails(cfg.Paths.WorldDetails)
	if err != nil {
		log.Warn("world details unavailable", "path", cfg.Paths.WorldDetails, "error", err)
	}

	cacheStore, err := cache.Open(cfg.Paths.CacheFile)
	if err != nil {
		log.Warn("chapter cache degraded", "error", err)
	}

	client := gemini.NewClient(cfg.APIKey, cfg.Generation.Model, cfg.Generation.EmbedModel)
	chunking := textproc.Config{ChunkSize: cfg.Chunking.Size, Overlap: cfg.Chunking.Overlap}

	ctrl := pipeline.NewController(
		client,
		search.NewRetriever(client, log),
		eval.New(client, log),
		cacheStore,
		st,
		profiles,
		world,
		pipeline.ControllerConfig{
			MaxIterations:   cfg.Evaluation.MaxIterations,
			MinQualityScore: cfg.Evaluation.MinQualityScore,
			Temperature:     cfg.Generation.Temperature,
			TopP:            cfg.Generation.TopP,
			MaxTokens:       cfg.Generation.MaxTokens,
			Chunking:        chunking,
		},
		log,
	)

	return &engine{cfg: cfg, log: log, client: client, store: st, ctrl: ctrl}, nil
}

func (e *engine) Close() {
	e.client.Close()
}
