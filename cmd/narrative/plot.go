package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPlotCommand(app *appContext) *cobra.Command {
	var (
		premise  string
		maxWords int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Generate a plot outline from a premise",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(app)
			if err != nil {
				return err
			}
			defer eng.Close()

			outline, err := eng.ctrl.PlotOutline(cmd.Context(), premise, maxWords)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(outline+"\n"), 0o644); err != nil {
					return fmt.Errorf("write outline: %w", err)
				}
				fmt.Printf("Outline written to %s\n", output)
				return nil
			}
			fmt.Println(outline)
			return nil
		},
	}

	cmd.Flags().StringVarP(&premise, "premise", "p", "", "One-line story premise")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Approximate outline length bound")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the outline to a file")
	cmd.MarkFlagRequired("premise")

	return cmd
}
