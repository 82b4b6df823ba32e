package terminal

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	backgroundColor = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#0F172A"}

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6D28D9")).
			Padding(1, 3).
			Width(44)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Width(38).
			Align(lipgloss.Center).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#047857"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C"))
)

// Center places body in the middle of a width x height region filled
// with the background color. Bodies larger than the region are returned
// unchanged in that dimension.
func Center(width, height int, body string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(backgroundColor))
}

// Card renders a titled card around lines.
func Card(title string, lines ...string) string {
	parts := append([]string{titleStyle.Render(title)}, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Notice styles a form-level message.
func Notice(message string, failed bool) string {
	if failed {
		return failureStyle.Render(message)
	}
	return successStyle.Render(message)
}
