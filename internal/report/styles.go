package report

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#FF5F5F")
	colorGreen  = lipgloss.Color("#5FD75F")
	colorYellow = lipgloss.Color("#FFD75F")
	colorCyan   = lipgloss.Color("#00D7FF")
	colorGray   = lipgloss.Color("#808080")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	strengthStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	weaknessStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	interviewerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

func scoreStyle(score int) lipgloss.Style {
	color := colorRed
	switch {
	case score >= 75:
		color = colorGreen
	case score >= 50:
		color = colorYellow
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}
