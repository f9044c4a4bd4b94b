package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
	"github.com/wh0isdsmith/narr-ai-tive/internal/ingest"
	"github.com/wh0isdsmith/narr-ai-tive/internal/textproc"
)

func newIngestCommand(app *appContext) *cobra.Command {
	var (
		dir     string
		out     string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the embedded corpus from source files",
		Long: "Parse every supported file (.txt, .md, .html, .pdf, .docx) under a\n" +
			"directory, chunk the text, embed each chunk and write the corpus JSON\n" +
			"the generate command loads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			log := app.logger()

			if cfg.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is not set")
			}
			if out == "" {
				out = cfg.Paths.Embeddings
			}
			if workers == 0 {
				workers = cfg.Ingest.Workers
			}

			client := gemini.NewClient(cfg.APIKey, cfg.Generation.Model, cfg.Generation.EmbedModel)
			defer client.Close()

			ing := ingest.New(client, ingest.Config{
				Chunking: textproc.Config{ChunkSize: cfg.Chunking.Size, Overlap: cfg.Chunking.Overlap},
				Workers:  workers,
			}, log)

			res, err := ing.Run(cmd.Context(), dir, out)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d documents (%d chunks) into %s\n", res.Documents, res.Chunks, out)
			for _, skipped := range res.Skipped {
				fmt.Printf("Skipped %s\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of source material")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output corpus file (defaults to the configured embeddings path)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent embedding calls")
	cmd.MarkFlagRequired("dir")

	return cmd
}
