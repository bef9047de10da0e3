package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("57"))

	campStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	roamStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	battleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("201"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func classificationStyle(classification string) lipgloss.Style {
	switch classification {
	case "camp", "solo_camp", "roaming_camp", "smartbomb":
		return campStyle
	case "roam", "solo_roam":
		return roamStyle
	case "battle":
		return battleStyle
	default:
		return unknownStyle
	}
}
