package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})

	inputStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	statusStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(1)

	speakingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D23F54", Dark: "#FF5C7A"}).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(1)
)

const helpText = "enter: speak line • ctrl+n: next voice • ctrl+y: copy • esc: quit"

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("animalese"))
	b.WriteString("\n\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n\n")

	line := m.statusLine()
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	b.WriteString("\n")

	return b.String()
}

// statusLine picks the most urgent of error, transient status, speaking
// indicator, and the active voice.
func (m Model) statusLine() string {
	switch {
	case m.errText != "":
		return errorStyle.Render(m.errText)
	case m.status != "":
		return statusStyle.Render(m.status)
	case m.speaking:
		return speakingStyle.Render("speaking…")
	default:
		return statusStyle.Render("voice: " + m.speaker.Profile().Voice.String())
	}
}
