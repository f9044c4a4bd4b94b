package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/session"
)

func newSessionsCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved generation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}

			paths, err := session.List(cfg.Paths.SessionDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Println("No sessions saved.")
				return nil
			}

			for _, path := range paths {
				s, err := session.Load(path)
				if err != nil {
					fmt.Printf("%s (unreadable: %v)\n", filepath.Base(path), err)
					continue
				}
				name := s.Name
				if name == "" {
					name = s.Request.Query
				}
				fmt.Printf("%s  %-30s  quality %.2f  %d words\n",
					s.CreatedAt.Format("2006-01-02 15:04"),
					name,
					s.Metrics.QualityScore,
					s.Metrics.WordCount,
				)
			}
			return nil
		},
	}
	return cmd
}
