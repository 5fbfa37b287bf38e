// Package theme holds the shared palette and styles for tules' terminal UI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// --- Kanagawa-inspired palette ---
const (
	darkGreen    = "#98BB6C"
	darkYellow   = "#FF9E3B"
	darkRed      = "#FF5D62"
	darkCyan     = "#7E9CD8"
	darkBlue     = "#7FB4CA"
	darkViolet   = "#957FB8"
	darkText     = "#DCD7BA"
	darkMuted    = "#727169"
	darkBorder   = "#363646"
	darkSelected = "#223249"

	lightGreen    = "#4E7C5A"
	lightYellow   = "#A68A64"
	lightRed      = "#C34043"
	lightCyan     = "#5B8BBE"
	lightBlue     = "#4F7CAC"
	lightViolet   = "#674D7A"
	lightText     = "#2B2F42"
	lightMuted    = "#6C7086"
	lightBorder   = "#B5BDC5"
	lightSelected = "#E2E6F3"
)

var hasDarkBackground = termenv.HasDarkBackground()

func pick(light, dark string) lipgloss.Color {
	if hasDarkBackground {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// Colors resolved once against the detected terminal background.
var (
	ColorGreen    = pick(lightGreen, darkGreen)
	ColorYellow   = pick(lightYellow, darkYellow)
	ColorRed      = pick(lightRed, darkRed)
	ColorCyan     = pick(lightCyan, darkCyan)
	ColorBlue     = pick(lightBlue, darkBlue)
	ColorViolet   = pick(lightViolet, darkViolet)
	ColorText     = pick(lightText, darkText)
	ColorMuted    = pick(lightMuted, darkMuted)
	ColorBorder   = pick(lightBorder, darkBorder)
	ColorSelected = pick(lightSelected, darkSelected)
)

// Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorBorder)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorSelected)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	AgentStyle = lipgloss.NewStyle().
			Foreground(ColorViolet)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	RoleUserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	RoleAssistantStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorGreen)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)
)
