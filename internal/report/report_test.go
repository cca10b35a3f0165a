package report

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/hh-interviewer/internal/analysis"
)

func TestRenderIncludesReportContent(t *testing.T) {
	out := Render(analysis.Report{
		PreparednessScore:     82,
		Strengths:             []string{"Clear answers"},
		Weaknesses:            []string{"Long pauses"},
		ImprovementAreas:      analysis.ImprovementAreas,
		TechnicalKeywordUsage: 0.125,
		FillerWordRatio:       0.01,
	})

	for _, want := range []string{
		"Interview preparedness",
		"82/100",
		"keyword usage 12.5%",
		"filler words 1.0%",
		"Clear answers",
		"Long pauses",
		analysis.ImprovementAreas[2],
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered report is missing %q:\n%s", want, out)
		}
	}
}

func TestScoreStyleBands(t *testing.T) {
	tests := map[int]lipgloss.Color{
		90: colorGreen,
		75: colorGreen,
		60: colorYellow,
		10: colorRed,
	}

	for score, want := range tests {
		if got := scoreStyle(score).GetForeground(); got != lipgloss.TerminalColor(want) {
			t.Fatalf("score %d: expected %v, got %v", score, want, got)
		}
	}
}

func TestInterviewerLine(t *testing.T) {
	if out := Interviewer("Hello"); !strings.Contains(out, "Sam:") || !strings.Contains(out, "Hello") {
		t.Fatalf("unexpected interviewer line: %q", out)
	}
}
