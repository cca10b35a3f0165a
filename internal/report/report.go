// Package report renders interview output for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/hh-interviewer/internal/analysis"
)

// Render formats a preparedness report as a bordered terminal block.
func Render(r analysis.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Interview preparedness"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score: %s\n", scoreStyle(r.PreparednessScore).Render(fmt.Sprintf("%d/100", r.PreparednessScore)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("keyword usage %.1f%%, filler words %.1f%%",
		r.TechnicalKeywordUsage*100, r.FillerWordRatio*100)))

	writeList(&b, "Strengths", r.Strengths, strengthStyle)
	writeList(&b, "Weaknesses", r.Weaknesses, weaknessStyle)
	writeList(&b, "Improvement areas", r.ImprovementAreas, lipgloss.NewStyle())

	return boxStyle.Render(b.String())
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(title))
	for _, item := range items {
		b.WriteString("\n")
		b.WriteString(style.Render("  • " + item))
	}
}

// Interviewer formats an interviewer utterance.
func Interviewer(text string) string {
	return interviewerStyle.Render("Sam:") + " " + text
}

// Summary formats the narrative summary produced at the end of an interview.
func Summary(text string) string {
	return boxStyle.Render(titleStyle.Render("Summary") + "\n" + text)
}

// Notice formats a secondary status line.
func Notice(text string) string {
	return dimStyle.Render(text)
}
