package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/export"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
	"github.com/wh0isdsmith/narr-ai-tive/internal/session"
)

func newGenerateCommand(app *appContext) *cobra.Command {
	var (
		query       string
		style       string
		character   string
		situation   string
		stylePrompt string
		plotFile    string
		topN        int
		temperature float64
		maxTokens   int
		force       bool
		output      string
		sessionName string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one chapter from the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(app)
			if err != nil {
				return err
			}
			defer eng.Close()

			req := pipeline.Request{
				Query:       query,
				Style:       style,
				Character:   character,
				Situation:   situation,
				StylePrompt: stylePrompt,
				TopN:        topN,
				Temperature: temperature,
				MaxTokens:   maxTokens,
				Force:       force,
			}
			if req.Style == "" {
				req.Style = eng.cfg.Generation.Style
			}
			if plotFile != "" {
				outline, err := os.ReadFile(plotFile)
				if err != nil {
					return fmt.Errorf("read plot outline: %w", err)
				}
				req.PlotOutline = strings.TrimSpace(string(outline))
			}

			res, err := eng.ctrl.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Println(renderResult(res, eng.cfg.Evaluation.MinQualityScore))

			if output != "" {
				title := character
				if title == "" {
					title = query
				}
				if err := export.Write(export.Chapter{Title: title, Text: res.Text}, output); err != nil {
					return err
				}
				fmt.Printf("Exported to %s\n", output)
			}
			if sessionName != "" {
				path, err := session.Save(eng.cfg.Paths.SessionDir, session.Session{
					Name:    sessionName,
					Request: req,
					Text:    res.Text,
					Metrics: res.Metrics,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Session saved to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "What the chapter should be about")
	cmd.Flags().StringVarP(&style, "style", "s", "", "Writing style (defaults to the configured style)")
	cmd.Flags().StringVar(&character, "character", "", "Point-of-view character")
	cmd.Flags().StringVar(&situation, "situation", "", "Scene or situation the chapter covers")
	cmd.Flags().StringVar(&stylePrompt, "style-prompt", "", "Free-form style description overriding --style")
	cmd.Flags().StringVar(&plotFile, "plot", "", "File containing a plot outline to follow")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Number of corpus chunks to retrieve")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "Sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum output tokens")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even when a cached chapter exists")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export the chapter to a file (.txt, .md or .html)")
	cmd.Flags().StringVar(&sessionName, "save-session", "", "Save the run as a named session")
	cmd.MarkFlagRequired("query")

	return cmd
}
