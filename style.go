package main

import "github.com/charmbracelet/lipgloss"

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	roleStyle    = lipgloss.NewStyle().Width(18)
)
