package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/export"
	"github.com/wh0isdsmith/narr-ai-tive/internal/session"
)

func newExportCommand() *cobra.Command {
	var (
		sessionPath string
		output      string
		title       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved session as text, markdown or HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(sessionPath)
			if err != nil {
				return err
			}

			if title == "" {
				title = s.Name
			}
			if title == "" {
				title = s.Request.Query
			}

			if err := export.Write(export.Chapter{Title: title, Text: s.Text}, output); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionPath, "session", "s", "", "Path to a saved session file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.txt, .md or .html)")
	cmd.Flags().StringVar(&title, "title", "", "Chapter title (defaults to the session name)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("output")

	return cmd
}
