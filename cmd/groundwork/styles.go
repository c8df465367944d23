package main

import "github.com/charmbracelet/lipgloss"

// Terminal colors for command output.
var (
	colorPrimary = lipgloss.Color("12") // blue
	colorSuccess = lipgloss.Color("10") // green
	colorWarning = lipgloss.Color("11") // yellow
	colorError   = lipgloss.Color("9")  // red
	colorMuted   = lipgloss.Color("8")  // gray
)

// Output styles shared by the commands.
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)
)
