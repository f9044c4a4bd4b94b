package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wh0isdsmith/narr-ai-tive/internal/eval"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	poorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))

	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(1, 2).
			Width(80)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")).
			Italic(true)
)

// renderResult prints the chapter and its score card.
func renderResult(res *pipeline.Result, threshold float64) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Generated Chapter"))
	b.WriteString("\n")
	b.WriteString(storyStyle.Render(res.Text))
	b.WriteString("\n\n")
	b.WriteString(renderMetrics(res.Metrics, threshold))

	switch {
	case res.FromCache:
		b.WriteString("\n" + noteStyle.Render("Served from cache."))
	case res.Outcome == pipeline.OutcomeExhausted:
		b.WriteString("\n" + noteStyle.Render(fmt.Sprintf(
			"Iteration budget exhausted after %d attempts; best candidate shown.", len(res.History))))
	}
	return b.String()
}

func renderMetrics(m eval.Metrics, threshold float64) string {
	rows := []struct {
		label string
		value string
		score float64
		gauge bool
	}{
		{"Quality score", fmt.Sprintf("%.2f", m.QualityScore), m.QualityScore, true},
		{"ROUGE-1", fmt.Sprintf("%.3f", m.Rouge1), 0, false},
		{"ROUGE-2", fmt.Sprintf("%.3f", m.Rouge2), 0, false},
		{"ROUGE-L", fmt.Sprintf("%.3f", m.RougeL), 0, false},
		{"Semantic similarity", fmt.Sprintf("%.3f", m.SemanticSimilarity), 0, false},
		{"Lexical diversity", fmt.Sprintf("%.3f", m.LexicalDiversity), 0, false},
		{"Words", fmt.Sprintf("%d", m.WordCount), 0, false},
		{"Sentences", fmt.Sprintf("%d", m.SentenceCount), 0, false},
		{"Avg sentence length", fmt.Sprintf("%.1f", m.AvgSentenceLength), 0, false},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Evaluation"))
	b.WriteString("\n")
	for _, row := range rows {
		style := valueStyle
		if row.gauge {
			if row.score >= threshold {
				style = goodStyle
			} else {
				style = poorStyle
			}
		}
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(style.Render(row.value))
		b.WriteString("\n")
	}
	return b.String()
}
