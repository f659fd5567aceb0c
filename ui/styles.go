package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("205")
	blurple = lipgloss.Color("62")
	cyan    = lipgloss.Color("39")
	grey    = lipgloss.Color("240")
	red     = lipgloss.Color("196")

	titleStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	nameStyle      = lipgloss.NewStyle()
	matchStyle     = lipgloss.NewStyle().Foreground(blurple).Underline(true)
	pathStyle      = lipgloss.NewStyle().Foreground(grey)
	recentStyle    = lipgloss.NewStyle().Foreground(cyan)
	accessoryStyle = lipgloss.NewStyle().Foreground(grey).Italic(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(grey)
	errorStyle     = lipgloss.NewStyle().Foreground(red)
	activeTab      = lipgloss.NewStyle().Foreground(accent).Bold(true)
	inactiveTab    = lipgloss.NewStyle().Foreground(grey)
	helpKeyStyle   = lipgloss.NewStyle().Foreground(blurple)
)
