package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText   = lipgloss.Color("#e6edf3")
	colorMuted  = lipgloss.Color("#8b9bab")
	colorAccent = lipgloss.Color("#f6ae2d")
	colorGreen  = lipgloss.Color("#76b041")
	colorRed    = lipgloss.Color("#e4572e")
)

var (
	appStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted).
			MarginBottom(1)

	countStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)
